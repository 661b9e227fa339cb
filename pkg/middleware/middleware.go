// Package middleware provides composable HTTP middleware.
package middleware

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Stack is an ordered list of middleware. The first registered middleware is
// the outermost wrapper.
type Stack struct {
	items []Middleware
}

// Use appends mw to the stack.
func (s *Stack) Use(mw Middleware) {
	s.items = append(s.items, mw)
}

// Wrap applies the stack to h.
func (s *Stack) Wrap(h http.Handler) http.Handler {
	for i := len(s.items) - 1; i >= 0; i-- {
		h = s.items[i](h)
	}
	return h
}
