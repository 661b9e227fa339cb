// Package summaries asks the model for an issue-level summary of a set of
// posts and decodes the reply.
package summaries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/beacon/internal/classifications"
	"github.com/JaimeStill/beacon/internal/responder"
	"github.com/JaimeStill/beacon/pkg/formatting"
)

var (
	ErrEmptyPosts   = errors.New("invalid or empty search_results")
	ErrTooManyPosts = errors.New("too many posts to summarize")
	ErrParseFailed  = errors.New("failed to parse summary")
)

// MapHTTPStatus maps summary errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmptyPosts):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyPosts):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, responder.ErrRemoteService), errors.Is(err, ErrParseFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Summary is the decoded model reply. UrgencyScore accepts a number or a
// numeric string; null or unreadable scores decode as
// classifications.NoUrgency.
type Summary struct {
	MainIssue    string                  `json:"main_issue"`
	Problem      string                  `json:"problem"`
	Suggestion   string                  `json:"suggestion"`
	UrgencyScore classifications.Urgency `json:"urgency_score"`
}

// Responder produces a raw summary reply.
type Responder interface {
	Summarize(ctx context.Context, posts []responder.SummaryPost) (string, error)
}

// System defines the summary operations.
type System interface {
	Handler() *Handler
	Summarize(ctx context.Context, posts []responder.SummaryPost) (*Summary, error)
}

type system struct {
	responder Responder
	logger    *slog.Logger
	maxPosts  int
}

// New creates the summary System. A zero maxPosts disables the limit.
func New(rsp Responder, logger *slog.Logger, maxPosts int) System {
	return &system{
		responder: rsp,
		logger:    logger.With("system", "summaries"),
		maxPosts:  maxPosts,
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *system) Summarize(ctx context.Context, posts []responder.SummaryPost) (*Summary, error) {
	if len(posts) == 0 {
		return nil, ErrEmptyPosts
	}
	if s.maxPosts > 0 && len(posts) > s.maxPosts {
		return nil, fmt.Errorf("%w: %d exceeds limit of %d", ErrTooManyPosts, len(posts), s.maxPosts)
	}

	raw, err := s.responder.Summarize(ctx, posts)
	if err != nil {
		return nil, err
	}

	summary, err := formatting.Parse[Summary](raw)
	if err != nil {
		s.logger.WarnContext(ctx, "summary unparseable", "response", formatting.Truncate(raw, 500))
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	s.logger.InfoContext(ctx, "summary generated",
		"posts", len(posts),
		"urgency_score", summary.UrgencyScore,
	)
	return &summary, nil
}
