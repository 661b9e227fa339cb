package main

import (
	"context"
	"net/http"

	"github.com/JaimeStill/beacon/internal/api"
	"github.com/JaimeStill/beacon/internal/config"
	"github.com/JaimeStill/beacon/internal/infrastructure"
	"github.com/JaimeStill/beacon/pkg/handlers"
	"github.com/JaimeStill/beacon/pkg/lifecycle"
	"github.com/JaimeStill/beacon/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

// Pinger reports whether a dependency required for serving is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func buildRouter(lc *lifecycle.Coordinator, deps ...Pinger) *module.Router {
	router := module.NewRouter()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !lc.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		for _, dep := range deps {
			if err := dep.Ping(r.Context()); err != nil {
				handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	return router
}
