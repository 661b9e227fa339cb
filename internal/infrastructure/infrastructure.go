// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, model access) that
// domain systems require.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/beacon/internal/config"
	"github.com/JaimeStill/beacon/internal/responder"
	"github.com/JaimeStill/beacon/pkg/database"
	"github.com/JaimeStill/beacon/pkg/lifecycle"
	"github.com/JaimeStill/beacon/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Responder *responder.Responder
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
// A Gemini client that cannot be created fails startup.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := NewLogger(&cfg.Logging, os.Stderr)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	rsp, err := NewResponder(lc, &cfg.Gemini, logger)
	if err != nil {
		return nil, err
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Responder: rsp,
	}, nil
}

// NewResponder builds a Responder backed by a Vertex AI Gemini client.
func NewResponder(lc *lifecycle.Coordinator, cfg *responder.Config, logger *slog.Logger) (*responder.Responder, error) {
	gen, err := responder.NewGemini(lc.Context(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("responder init failed: %w", err)
	}
	return responder.New(cfg, gen, logger), nil
}

// NewLogger returns a slog logger writing text or JSON records to w at the
// configured level.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database and storage hooks are registered for startup and shutdown coordination.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
