package prompts

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tbdc/leadscope/pkg/handlers"
	"github.com/tbdc/leadscope/pkg/routes"
)

// Handler provides HTTP endpoints for prompt template operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// UpdateRequest is the JSON body for template updates.
type UpdateRequest struct {
	Content string `json:"content"`
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "prompts"),
	}
}

// Routes returns the route group definition for prompt template endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/settings/prompts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.All},
			{Method: "GET", Pattern: "/{key}", Handler: h.Find},
			{Method: "PUT", Pattern: "/{key}", Handler: h.Update},
			{Method: "POST", Pattern: "/{key}/reset", Handler: h.Reset},
		},
	}
}

// All returns every stored template.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	templates, err := h.sys.All(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, templates)
}

// Find returns a single template by key.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	key, err := ParseKey(r.PathValue("key"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	template, err := h.sys.Find(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, template)
}

// Update replaces a template's content after placeholder validation.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	key, err := ParseKey(r.PathValue("key"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	template, err := h.sys.Update(r.Context(), key, req.Content)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, template)
}

// Reset restores a template to its seed content.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	key, err := ParseKey(r.PathValue("key"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	template, err := h.sys.Reset(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, template)
}
