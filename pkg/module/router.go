package module

import (
	"net/http"
	"strings"
)

// Router dispatches to mounted modules by first path segment and falls back
// to a plain ServeMux for everything else.
type Router struct {
	modules  map[string]*Module
	fallback *http.ServeMux
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{
		modules:  make(map[string]*Module),
		fallback: http.NewServeMux(),
	}
}

// Mount registers m under its prefix, replacing any module with the same prefix.
func (r *Router) Mount(m *Module) {
	r.modules[m.Prefix()] = m
}

// HandleFunc registers a handler on the fallback mux.
func (r *Router) HandleFunc(pattern string, fn http.HandlerFunc) {
	r.fallback.HandleFunc(pattern, fn)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if len(req.URL.Path) > 1 {
		req.URL.Path = strings.TrimSuffix(req.URL.Path, "/")
	}

	if m, ok := r.modules[firstSegment(req.URL.Path)]; ok {
		m.ServeHTTP(w, req)
		return
	}

	r.fallback.ServeHTTP(w, req)
}

func firstSegment(path string) string {
	rest := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return "/" + rest
}
