package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/productlabel/productlabel-server/internal/config"
	"github.com/productlabel/productlabel-server/internal/logger"
	"github.com/productlabel/productlabel-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite label and catalog store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data path: %w", err)
	}

	dbPath := cfg.Storage.DatabasePath()
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}
	db.SetSingleStoreMode(cfg.Labels.SingleStoreMode)

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}
