package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/productlabel/productlabel-server/internal/cache"
	"github.com/productlabel/productlabel-server/internal/domain"
	"github.com/productlabel/productlabel-server/internal/metrics"
)

// Catalog cache naming.
const (
	// CacheTag is carried by every catalog snapshot so they flush together.
	CacheTag = "productlabel"
	// DefaultCacheNamespace prefixes the per-store snapshot keys.
	DefaultCacheNamespace = "productlabel_frontend"
)

// ActiveLabelSource lists the active labels visible in a store.
type ActiveLabelSource interface {
	ListActiveLabels(ctx context.Context, storeID int64) ([]*domain.Label, error)
}

// LabelCatalog serves the active labels of a store from a per-store cache
// snapshot, rebuilding it from the label store on a miss.
//
// Snapshots have no expiry. Writers call FlushCache after changing labels.
type LabelCatalog struct {
	labels    ActiveLabelSource
	cache     cache.Cache
	namespace string
	logger    *slog.Logger
}

// NewLabelCatalog creates a new label catalog.
func NewLabelCatalog(labels ActiveLabelSource, c cache.Cache, namespace string, logger *slog.Logger) *LabelCatalog {
	if namespace == "" {
		namespace = DefaultCacheNamespace
	}
	return &LabelCatalog{
		labels:    labels,
		cache:     c,
		namespace: namespace,
		logger:    logger,
	}
}

// CacheKey returns the snapshot key of a store, e.g. "productlabel_frontend_1".
func (c *LabelCatalog) CacheKey(storeID int64) string {
	return c.namespace + "_" + strconv.FormatInt(storeID, 10)
}

// GetActiveLabels returns the active labels of a store in id order.
// A store without labels yields an empty, non-nil slice.
func (c *LabelCatalog) GetActiveLabels(ctx context.Context, storeID int64) ([]*domain.Label, error) {
	key := c.CacheKey(storeID)

	if labels, ok := c.loadSnapshot(ctx, key); ok {
		metrics.CatalogCacheHits.Inc()
		return labels, nil
	}
	metrics.CatalogCacheMisses.Inc()

	labels, err := c.labels.ListActiveLabels(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("list active labels for store %d: %w", storeID, err)
	}
	if labels == nil {
		labels = []*domain.Label{}
	}

	data, err := json.Marshal(labels)
	if err != nil {
		c.logger.Error("failed to encode label snapshot", "store_id", storeID, "error", err)
		return labels, nil
	}

	// Concurrent misses may both save here; the snapshots are identical.
	if err := c.cache.Save(ctx, key, data, CacheTag); err != nil {
		metrics.CatalogCacheErrors.WithLabelValues("save").Inc()
		c.logger.Warn("failed to cache label snapshot", "key", key, "error", err)
	}

	return labels, nil
}

// loadSnapshot returns the cached labels. Transport and decode failures
// count as a miss.
func (c *LabelCatalog) loadSnapshot(ctx context.Context, key string) ([]*domain.Label, bool) {
	data, ok, err := c.cache.Load(ctx, key)
	if err != nil {
		metrics.CatalogCacheErrors.WithLabelValues("load").Inc()
		c.logger.Warn("failed to load label snapshot", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var labels []*domain.Label
	if err := json.Unmarshal(data, &labels); err != nil {
		metrics.CatalogCacheErrors.WithLabelValues("decode").Inc()
		c.logger.Warn("discarding undecodable label snapshot", "key", key, "error", err)
		return nil, false
	}
	if labels == nil {
		labels = []*domain.Label{}
	}
	return labels, true
}

// FlushCache drops the snapshots of every store and returns how many existed.
func (c *LabelCatalog) FlushCache(ctx context.Context) (int, error) {
	n, err := c.cache.Clean(ctx, CacheTag)
	if err != nil {
		return 0, fmt.Errorf("flush label cache: %w", err)
	}
	c.logger.Info("label cache flushed", "entries", n)
	return n, nil
}
