package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/productlabel/productlabel-server/internal/api"
	"github.com/productlabel/productlabel-server/internal/config"
	"github.com/productlabel/productlabel-server/internal/logger"
	"github.com/productlabel/productlabel-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	defer h.api.Close()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Label:      do.MustInvoke[*service.LabelService](i),
		Storefront: do.MustInvoke[*service.StorefrontService](i),
	}

	health := api.HealthChecks{
		"database": storeHandle.Store,
		"cache":    cacheHandle.BadgerCache,
	}

	handler := api.NewServer(services, health, api.Options{
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		AdminRateLimit:     cfg.Server.AdminRateLimit,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
