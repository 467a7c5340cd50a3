package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/productlabel/productlabel-server/internal/domain"
	"github.com/productlabel/productlabel-server/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeLabelSource counts how often the catalog falls through to storage.
type fakeLabelSource struct {
	labels []*domain.Label
	err    error
	calls  int
}

func (f *fakeLabelSource) ListActiveLabels(_ context.Context, _ int64) ([]*domain.Label, error) {
	f.calls++
	return f.labels, f.err
}

// fakeCatalog returns a fixed label list for every store.
type fakeCatalog struct {
	labels []*domain.Label
	err    error
}

func (f *fakeCatalog) GetActiveLabels(_ context.Context, _ int64) ([]*domain.Label, error) {
	return f.labels, f.err
}

// fakeAttributes resolves attribute metadata from a map.
type fakeAttributes struct {
	attrs  map[int64]*domain.Attribute
	failed map[int64]error
}

func (f *fakeAttributes) AttributeByID(_ context.Context, id int64) (*domain.Attribute, error) {
	if err, ok := f.failed[id]; ok {
		return nil, err
	}
	if a, ok := f.attrs[id]; ok {
		return a, nil
	}
	return nil, store.ErrAttributeNotFound
}

// memoryCache is an in-process cache.Cache with injectable failures.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	tags    map[string]map[string]struct{}
	loadErr error
	saveErr error
	saves   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		entries: map[string][]byte{},
		tags:    map[string]map[string]struct{}{},
	}
}

func (c *memoryCache) Load(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loadErr != nil {
		return nil, false, c.loadErr
	}
	data, ok := c.entries[key]
	return data, ok, nil
}

func (c *memoryCache) Save(_ context.Context, key string, data []byte, tags ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saves++
	if c.saveErr != nil {
		return c.saveErr
	}
	c.entries[key] = data
	for _, tag := range tags {
		if c.tags[tag] == nil {
			c.tags[tag] = map[string]struct{}{}
		}
		c.tags[tag][key] = struct{}{}
	}
	return nil
}

func (c *memoryCache) Remove(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) Clean(_ context.Context, tags ...string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, tag := range tags {
		for key := range c.tags[tag] {
			if _, ok := c.entries[key]; ok {
				delete(c.entries, key)
				n++
			}
		}
		delete(c.tags, tag)
	}
	return n, nil
}
