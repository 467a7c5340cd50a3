// Package providers contains dependency injection providers for the product label server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/productlabel/productlabel-server/internal/config"
	"github.com/productlabel/productlabel-server/internal/logger"
	"github.com/productlabel/productlabel-server/internal/metrics"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	metrics.Init()

	log.Info("Starting Product Label Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Storage.DataPath,
		"single_store_mode", cfg.Labels.SingleStoreMode,
	)

	return log, nil
}
