package api

import (
	"github.com/JaimeStill/beacon/internal/classifications"
	"github.com/JaimeStill/beacon/internal/config"
	"github.com/JaimeStill/beacon/internal/infrastructure"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Classify classifications.Options
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Classify: classifications.Options{
			BatchSize:      cfg.Classify.BatchSize,
			MaxConcurrency: cfg.Classify.MaxConcurrency,
			MaxPosts:       cfg.Classify.MaxPosts,
			Pagination:     cfg.API.Pagination,
		},
	}
}
