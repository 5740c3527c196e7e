// Package main provides the entry point for the MemoryLane server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/memorylane/memorylane-server/internal/di"
	"github.com/memorylane/memorylane-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		_ = injector.Shutdown() //nolint:errcheck // already exiting with the bootstrap error
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info("Shutting down server gracefully...", "signal", sig.String())

	// The container shuts down in reverse dependency order: the HTTP server
	// drains first, then the limiter, then the database.
	if err := injector.Shutdown(); err != nil {
		log.WithError(err).Error("Shutdown error")
		os.Exit(1)
	}

	log.Info("Goodbye")
}
