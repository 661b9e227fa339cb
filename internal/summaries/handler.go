package summaries

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/beacon/internal/responder"
	"github.com/JaimeStill/beacon/pkg/handlers"
	"github.com/JaimeStill/beacon/pkg/routes"
)

// Request is the summarize request body.
type Request struct {
	SearchResults []responder.SummaryPost `json:"search_results"`
}

// Response wraps the decoded summary.
type Response struct {
	Summary *Summary `json:"summary"`
}

// Handler provides the summary endpoint.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "summaries"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/summaries",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Summarize},
		},
	}
}

func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, handlers.DecodeStatus(err), err)
		return
	}

	summary, err := h.sys.Summarize(r.Context(), req.SearchResults)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Response{Summary: summary})
}
