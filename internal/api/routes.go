package api

import (
	"net/http"

	"github.com/JaimeStill/beacon/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	classify := domain.Classifications.Handler()
	archive := newArchiveHandler(runtime.Storage, runtime.Logger)

	routes.Register(
		mux,
		classify.Routes(),
		classify.BatchRoutes(),
		archive.routes(),
		domain.Summaries.Handler().Routes(),
	)
}
