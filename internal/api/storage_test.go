package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/beacon/internal/classifications"
	"github.com/JaimeStill/beacon/pkg/lifecycle"
	"github.com/JaimeStill/beacon/pkg/routes"
	"github.com/JaimeStill/beacon/pkg/storage"
)

type memoryStore map[string]string

func (m memoryStore) Start(*lifecycle.Coordinator) error { return nil }

func (m memoryStore) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	m[key] = string(data)
	return err
}

func (m memoryStore) Download(_ context.Context, key string) (*storage.Blob, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	data, ok := m[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Blob{Body: io.NopCloser(strings.NewReader(data)), ContentLength: int64(len(data))}, nil
}

func (m memoryStore) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

func TestArchiveHandler(t *testing.T) {
	batch := uuid.New()
	store := memoryStore{classifications.ArchiveKey(batch, 1): `[{"uuid":"p1"}]`}

	mux := http.NewServeMux()
	routes.Register(mux, newArchiveHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil))).routes())

	tests := []struct {
		name   string
		target string
		status int
		body   string
	}{
		{"archived chunk", "/batches/" + batch.String() + "/raw/1", http.StatusOK, `[{"uuid":"p1"}]`},
		{"missing chunk", "/batches/" + batch.String() + "/raw/0", http.StatusNotFound, ""},
		{"bad chunk", "/batches/" + batch.String() + "/raw/-1", http.StatusBadRequest, ""},
		{"bad batch", "/batches/latest/raw/0", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.target, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
			if tt.status == http.StatusOK && rec.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
				t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
			}
		})
	}
}
