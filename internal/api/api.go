// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/beacon/internal/config"
	"github.com/JaimeStill/beacon/internal/infrastructure"
	"github.com/JaimeStill/beacon/pkg/middleware"
	"github.com/JaimeStill/beacon/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m, err := module.New(cfg.API.BasePath, mux)
	if err != nil {
		return nil, err
	}
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	if cfg.API.Auth.Enabled {
		verifier, err := middleware.NewVerifier(runtime.Lifecycle.Context(), &cfg.API.Auth)
		if err != nil {
			return nil, fmt.Errorf("auth: %w", err)
		}
		m.Use(middleware.Auth(verifier, runtime.Logger))
	}

	m.Use(middleware.MaxBody(cfg.API.MaxBodySizeBytes()))

	return m, nil
}
