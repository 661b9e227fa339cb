package summaries_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/beacon/internal/responder"
	"github.com/JaimeStill/beacon/internal/summaries"
	"github.com/JaimeStill/beacon/pkg/middleware"
	"github.com/JaimeStill/beacon/pkg/routes"
)

type fakeResponder struct {
	reply string
	err   error
	got   []responder.SummaryPost
}

func (f *fakeResponder) Summarize(_ context.Context, posts []responder.SummaryPost) (string, error) {
	f.got = posts
	return f.reply, f.err
}

func newSystem(rsp *fakeResponder, maxPosts int) summaries.System {
	return summaries.New(rsp, slog.New(slog.NewTextHandler(io.Discard, nil)), maxPosts)
}

func TestSummarize(t *testing.T) {
	rsp := &fakeResponder{reply: "```json\n{\"main_issue\":\"Flooding\",\"problem\":\"Drains blocked\",\"suggestion\":\"Clear drains\",\"urgency_score\":\"85\"}\n```"}
	sys := newSystem(rsp, 0)

	posts := []responder.SummaryPost{{FullText: "banjir lagi", ContextualContent: "flood"}}
	s, err := sys.Summarize(context.Background(), posts)
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}

	if s.MainIssue != "Flooding" || s.UrgencyScore != 85 {
		t.Errorf("summary = %+v", s)
	}
	if len(rsp.got) != 1 {
		t.Errorf("responder received %d posts", len(rsp.got))
	}
}

func TestSummarizeErrors(t *testing.T) {
	remote := fmt.Errorf("%w: summarize: boom", responder.ErrRemoteService)
	one := []responder.SummaryPost{{FullText: "a"}}

	tests := []struct {
		name   string
		rsp    *fakeResponder
		posts  []responder.SummaryPost
		max    int
		want   error
		status int
	}{
		{"empty", &fakeResponder{}, nil, 0, summaries.ErrEmptyPosts, http.StatusBadRequest},
		{"too many", &fakeResponder{}, append(one, one...), 1, summaries.ErrTooManyPosts, http.StatusRequestEntityTooLarge},
		{"remote", &fakeResponder{err: remote}, one, 0, responder.ErrRemoteService, http.StatusBadGateway},
		{"unparseable", &fakeResponder{reply: "Sorry."}, one, 0, summaries.ErrParseFailed, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newSystem(tt.rsp, tt.max).Summarize(context.Background(), tt.posts)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if got := summaries.MapHTTPStatus(err); got != tt.status {
				t.Errorf("status = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestHandler(t *testing.T) {
	rsp := &fakeResponder{reply: `{"main_issue":"Traffic","problem":"p","suggestion":"s","urgency_score":40}`}
	mux := http.NewServeMux()
	routes.Register(mux, newSystem(rsp, 0).Handler().Routes())

	body := `{"search_results":[{"full_text":"macet total","contextual_content":"traffic jam"}]}`
	req := httptest.NewRequest("POST", "/summaries", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp summaries.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Summary.MainIssue != "Traffic" || resp.Summary.UrgencyScore != 40 {
		t.Errorf("summary = %+v", resp.Summary)
	}

	req = httptest.NewRequest("POST", "/summaries", strings.NewReader(`{"search_results":[]}`))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty status = %d, want 400", rec.Code)
	}
}

func TestHandlerBodyLimit(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, newSystem(&fakeResponder{}, 0).Handler().Routes())
	limited := middleware.MaxBody(16)(mux)

	body := `{"search_results":[{"full_text":"` + strings.Repeat("x", 64) + `"}]}`
	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, httptest.NewRequest("POST", "/summaries", strings.NewReader(body)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}
