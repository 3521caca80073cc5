package enrichment

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tbdc/leadscope/internal/crm"
	"github.com/tbdc/leadscope/pkg/handlers"
	"github.com/tbdc/leadscope/pkg/routes"
)

// Handler provides HTTP endpoints for the enrichment pipeline.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "enrichment"),
	}
}

// Routes returns the route group definition for enrichment endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/enrich",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/url", Handler: h.EnrichURL},
			{Method: "GET", Pattern: "/{module}/{id}", Handler: h.Enrich},
		},
	}
}

// EnrichURL runs the lead pipeline for a bare website given by the url
// query parameter.
func (h *Handler) EnrichURL(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	force, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	result, err := h.sys.EnrichURL(r.Context(), rawURL, Options{ForceRefresh: force})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Enrich runs the pipeline for one record. Set refresh=true to bypass
// the cache read; the fresh result is still written back.
func (h *Handler) Enrich(w http.ResponseWriter, r *http.Request) {
	module, err := crm.ParseModule(r.PathValue("module"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, crm.ErrEntityNotFound)
		return
	}

	force, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	result, err := h.sys.Enrich(r.Context(), module, id, Options{ForceRefresh: force})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
