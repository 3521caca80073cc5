package api

import (
	"net/http"

	"github.com/tbdc/leadscope/internal/config"
	"github.com/tbdc/leadscope/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Enrichment.Handler().Routes(),
		domain.Cache.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		domain.Marketing.Handler(cfg.API.MaxIngestSizeBytes()).Routes(),
		domain.CRM.Handler().Routes(),
	)
}
