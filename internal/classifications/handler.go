package classifications

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/beacon/internal/responder"
	"github.com/JaimeStill/beacon/pkg/handlers"
	"github.com/JaimeStill/beacon/pkg/pagination"
	"github.com/JaimeStill/beacon/pkg/routes"
)

// Handler provides HTTP endpoints for classification operations.
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
		logger:     logger.With("handler", "classifications"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for classification endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/classifications",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/stats", Handler: h.Stats},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/post/{uuid}", Handler: h.FindByPost},
			{Method: "POST", Pattern: "", Handler: h.Classify},
			{Method: "POST", Pattern: "/raw", Handler: h.Raw},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// BatchRoutes returns the route group for batch lookups.
func (h *Handler) BatchRoutes() routes.Group {
	return routes.Group{
		Prefix: "/batches",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.FindBatch},
		},
	}
}

// List returns a paginated list of classifications with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromQuery(r.URL.Query(), h.pagination)

	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single classification by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	c, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// FindByPost returns every stored classification of a post, newest first.
func (h *Handler) FindByPost(w http.ResponseWriter, r *http.Request) {
	items, err := h.sys.FindByPost(r.Context(), r.PathValue("uuid"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// Stats returns aggregates over the classifications matching the List
// filters. The keywords parameter bounds the keyword list.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var limit int
	if v := r.URL.Query().Get("keywords"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid keywords %q: %w", v, err))
			return
		}
	}

	stats, err := h.sys.Stats(r.Context(), filters, limit)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}

// FindBatch returns the summary record of a batch.
func (h *Handler) FindBatch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrBatchNotFound)
		return
	}

	b, err := h.sys.FindBatch(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, b)
}

// Classify accepts a JSON array of posts (or {"posts": [...]}) and returns the
// stored batch with 201.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	posts, err := responder.DecodePosts(r.Body)
	if err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	result, err := h.sys.Classify(r.Context(), posts)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, result)
}

// Raw accepts the same body as Classify and returns the unparsed model output.
func (h *Handler) Raw(w http.ResponseWriter, r *http.Request) {
	posts, err := responder.DecodePosts(r.Body)
	if err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	raw, err := h.sys.Raw(r.Context(), posts)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, raw)
}

// Delete removes a classification by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
