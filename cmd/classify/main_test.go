package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaimeStill/beacon/internal/responder"
)

type echo struct {
	err error
}

func (e echo) Classify(_ context.Context, posts []responder.PostRecord) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return responder.RenderPosts(posts), nil
}

func TestReadPosts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	if err := os.WriteFile(path, []byte(`{"posts":[{"uuid":"f1"}]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	fromFile, err := readPosts(path, nil)
	if err != nil || len(fromFile) != 1 || fromFile[0].UUID != "f1" {
		t.Fatalf("file posts = %v, %v", fromFile, err)
	}

	fromStdin, err := readPosts("-", strings.NewReader(`[{"uuid":"s1"},{"uuid":"s2"}]`))
	if err != nil || len(fromStdin) != 2 {
		t.Fatalf("stdin posts = %v, %v", fromStdin, err)
	}

	if _, err := readPosts(filepath.Join(t.TempDir(), "missing.json"), nil); err == nil {
		t.Error("missing file should fail")
	}
}

func TestClassify(t *testing.T) {
	var out bytes.Buffer
	posts := []responder.PostRecord{{UUID: "p1", Fields: map[string]any{"text": "macet"}}}

	if err := classify(context.Background(), echo{}, posts, &out); err != nil {
		t.Fatalf("classify error: %v", err)
	}
	if got := out.String(); got != `[{"text":"macet","uuid":"p1"}]`+"\n" {
		t.Errorf("output = %q", got)
	}

	out.Reset()
	boom := errors.New("boom")
	if err := classify(context.Background(), echo{err: boom}, posts, &out); !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be printed on failure, got %q", out.String())
	}
}
