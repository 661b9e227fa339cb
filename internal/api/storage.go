package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/beacon/internal/classifications"
	"github.com/JaimeStill/beacon/pkg/handlers"
	"github.com/JaimeStill/beacon/pkg/routes"
	"github.com/JaimeStill/beacon/pkg/storage"
)

// archiveHandler serves archived raw model responses.
type archiveHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newArchiveHandler(store storage.System, logger *slog.Logger) *archiveHandler {
	return &archiveHandler{
		store:  store,
		logger: logger.With("handler", "archive"),
	}
}

func (h *archiveHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/batches",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}/raw/{chunk}", Handler: h.raw},
		},
	}
}

func (h *archiveHandler) raw(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, classifications.ErrBatchNotFound)
		return
	}

	chunk, err := strconv.Atoi(r.PathValue("chunk"))
	if err != nil || chunk < 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid chunk %q", r.PathValue("chunk")))
		return
	}

	key := classifications.ArchiveKey(id, chunk)
	blob, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer blob.Body.Close()

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, blob.Body); err != nil {
		h.logger.WarnContext(r.Context(), "archive copy interrupted", "key", key, "error", err)
	}
}
