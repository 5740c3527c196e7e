// Package di provides dependency injection configuration for the MemoryLane server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/memorylane/memorylane-server/internal/config"
	"github.com/memorylane/memorylane-server/internal/di/providers"
	"github.com/memorylane/memorylane-server/internal/logger"
	"github.com/memorylane/memorylane-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideBootstrap)

	// Business services
	do.Provide(injector, providers.ProvideMemoryService)
	do.Provide(injector, providers.ProvideTagService)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// This triggers lazy initialization of every provider.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.MemoryService](injector)
	if _, err := do.Invoke[*providers.Bootstrap](injector); err != nil {
		return err
	}

	// Server
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
