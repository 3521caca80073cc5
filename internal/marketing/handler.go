package marketing

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tbdc/leadscope/pkg/formatting"
	"github.com/tbdc/leadscope/pkg/handlers"
	"github.com/tbdc/leadscope/pkg/pagination"
	"github.com/tbdc/leadscope/pkg/routes"
)

const defaultSearchK = 5

// Handler provides HTTP endpoints for marketing corpus operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxIngestSize int64
}

// SearchRequest is the JSON body for corpus similarity searches.
type SearchRequest struct {
	Text string `json:"text"`
	K    int    `json:"k"`
}

// NewHandler creates a Handler with the given system, logger, pagination
// config, and ingest body limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxIngestSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "marketing"),
		pagination:    pagination,
		maxIngestSize: maxIngestSize,
	}
}

// Routes returns the route group definition for marketing endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/marketing",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/materials", Handler: h.List},
			{Method: "POST", Pattern: "/materials", Handler: h.Ingest},
			{Method: "DELETE", Pattern: "/materials", Handler: h.Clear},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "GET", Pattern: "/stats", Handler: h.Stats},
		},
	}
}

// List returns a paginated list of materials with optional filters.
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

// Ingest replaces the corpus with the provided materials.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxIngestSize)

	var cmds []CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmds); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge,
				fmt.Errorf("request body exceeds %s", formatting.FormatBytes(h.maxIngestSize, 0)))
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	count, err := h.sys.Ingest(r.Context(), cmds)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, map[string]int{"ingested": count})
}

// Clear removes every material from the corpus.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Clear(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Search runs a similarity search over the corpus. k comes from the body
// or the k query parameter, defaulting to 5.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if req.K <= 0 {
		if k, err := strconv.Atoi(r.URL.Query().Get("k")); err == nil && k > 0 {
			req.K = k
		} else {
			req.K = defaultSearchK
		}
	}

	matches, err := h.sys.Search(r.Context(), req.Text, req.K)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, matches)
}

// Stats reports corpus size and index state.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sys.Stats(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}
