// Command server runs the beacon HTTP API.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/beacon/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config load failed:", err)
		os.Exit(1)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "server init failed:", err)
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		srv.infra.Logger.Error("server start failed", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	srv.infra.Logger.Info("signal received", "signal", sig.String())
	if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		srv.infra.Logger.Error("shutdown incomplete", "error", err)
		os.Exit(1)
	}
	srv.infra.Logger.Info("beacon stopped")
}
