// Package module mounts prefixed HTTP sub-applications, each with its own
// middleware stack, onto a single root router.
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/beacon/pkg/middleware"
)

// Module serves every request under a single-level prefix such as "/api".
// The prefix is removed before the request reaches the inner handler.
type Module struct {
	prefix string
	inner  http.Handler
	stack  middleware.Stack
}

// New returns a Module for prefix. It returns an error when prefix is empty,
// lacks a leading slash, or has more than one path segment.
func New(prefix string, inner http.Handler) (*Module, error) {
	if prefix == "" || !strings.HasPrefix(prefix, "/") {
		return nil, fmt.Errorf("module prefix must start with /: %q", prefix)
	}
	if strings.Count(prefix, "/") != 1 {
		return nil, fmt.Errorf("module prefix must be a single path segment: %q", prefix)
	}

	return &Module{prefix: prefix, inner: inner}, nil
}

// Prefix returns the mount prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware to the module's stack.
func (m *Module) Use(mw middleware.Middleware) {
	m.stack.Use(mw)
}

func (m *Module) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.stack.Wrap(http.HandlerFunc(m.dispatch)).ServeHTTP(w, r)
}

func (m *Module) dispatch(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, m.prefix)
	if path == "" {
		path = "/"
	}

	r2 := r.Clone(r.Context())
	r2.URL.Path = path
	r2.URL.RawPath = ""
	m.inner.ServeHTTP(w, r2)
}
