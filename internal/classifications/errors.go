package classifications

import (
	"context"
	"errors"
	"net/http"

	"github.com/JaimeStill/beacon/internal/responder"
)

// Domain errors for classification operations.
var (
	ErrNotFound      = errors.New("classification not found")
	ErrBatchNotFound = errors.New("batch not found")
	ErrDuplicate     = errors.New("classification already exists")
	ErrEmptyPosts    = errors.New("no posts to classify")
	ErrTooManyPosts  = errors.New("too many posts")
	ErrInvalidPosts  = errors.New("invalid posts payload")
	ErrParseFailed   = errors.New("model response could not be parsed")
	ErrInvalidResult = errors.New("invalid classification result")
	ErrArchiveFailed = errors.New("raw response archive failed")
)

// MapHTTPStatus maps classification domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyPosts), errors.Is(err, ErrInvalidPosts):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyPosts):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, responder.ErrRemoteService), errors.Is(err, ErrParseFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
