// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/tbdc/leadscope/internal/config"
	"github.com/tbdc/leadscope/internal/infrastructure"
	"github.com/tbdc/leadscope/pkg/middleware"
	"github.com/tbdc/leadscope/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	registerStartup(runtime, domain)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))

	return m, nil
}

// registerStartup hooks template seeding and index hydration into the
// lifecycle so both complete before the server reports ready.
func registerStartup(runtime *Runtime, domain *Domain) {
	lc := runtime.Lifecycle

	lc.OnStartup(func() {
		if err := domain.Prompts.Seed(lc.Context()); err != nil {
			runtime.Logger.Error("prompt template seeding failed", "error", err)
		}
	})

	lc.OnStartup(func() {
		if err := domain.Marketing.Load(lc.Context()); err != nil {
			runtime.Logger.Error("marketing index hydration failed", "error", err)
		}
	})
}
