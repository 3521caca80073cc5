package crm

import (
	"log/slog"
	"net/http"

	"github.com/tbdc/leadscope/pkg/handlers"
	"github.com/tbdc/leadscope/pkg/routes"
)

// Handler provides HTTP endpoints for CRM connection status.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "crm"),
	}
}

// Routes returns the route group definition for CRM endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/crm",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/token", Handler: h.TokenStatus},
		},
	}
}

// TokenStatus reports whether a valid access token is held and when it
// expires. The token itself is never returned.
func (h *Handler) TokenStatus(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Tokens().Status())
}
