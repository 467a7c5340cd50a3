package providers

import (
	"github.com/samber/do/v2"

	"github.com/productlabel/productlabel-server/internal/cache"
	"github.com/productlabel/productlabel-server/internal/config"
	"github.com/productlabel/productlabel-server/internal/logger"
)

// CacheHandle wraps the Badger cache with shutdown capability.
type CacheHandle struct {
	*cache.BadgerCache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the catalog snapshot cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	c, err := cache.OpenBadger(cfg.Storage.CachePath(), log.Logger)
	if err != nil {
		return nil, err
	}

	return &CacheHandle{BadgerCache: c}, nil
}
