package enrichcache

import (
	"log/slog"
	"net/http"

	"github.com/tbdc/leadscope/pkg/handlers"
	"github.com/tbdc/leadscope/pkg/pagination"
	"github.com/tbdc/leadscope/pkg/routes"
)

// Handler provides HTTP endpoints for cache inspection and invalidation.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "enrichcache"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for cache endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/cache",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{module}/{id}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{module}/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of cache entries with optional filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns the full cached record for a module and record id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	key := BuildKey(r.PathValue("module"), r.PathValue("id"))

	record, err := h.sys.Find(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, record)
}

// Delete invalidates a cached record so the next enrichment regenerates it.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	key := BuildKey(r.PathValue("module"), r.PathValue("id"))

	if err := h.sys.Delete(r.Context(), key); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]string{"deleted": key})
}
