// Package di provides dependency injection configuration for the product label server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/productlabel/productlabel-server/internal/config"
	"github.com/productlabel/productlabel-server/internal/di/providers"
	"github.com/productlabel/productlabel-server/internal/logger"
	"github.com/productlabel/productlabel-server/internal/service"
	"github.com/productlabel/productlabel-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Persistence
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCache)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideLabelCatalog)
	do.Provide(injector, providers.ProvideLabelMatcher)
	do.Provide(injector, providers.ProvideLabelService)
	do.Provide(injector, providers.ProvideStorefrontService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services in dependency order.
// This triggers lazy initialization and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.CacheHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*service.LabelCatalog](injector)
	_ = do.MustInvoke[*service.LabelMatcher](injector)
	_ = do.MustInvoke[*service.LabelService](injector)
	_ = do.MustInvoke[*service.StorefrontService](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
