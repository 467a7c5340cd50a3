package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/productlabel/productlabel-server/internal/cache"
	"github.com/productlabel/productlabel-server/internal/domain"
	"github.com/productlabel/productlabel-server/internal/store/sqlite"
	"github.com/productlabel/productlabel-server/internal/validation"
)

// testEnv wires the services over a temp SQLite store and an in-memory
// Badger cache.
type testEnv struct {
	store      *sqlite.Store
	cache      *cache.BadgerCache
	catalog    *LabelCatalog
	labels     *LabelService
	storefront *StorefrontService

	color  *domain.Attribute
	badges *domain.Attribute
}

func newTestEnv(t *testing.T, singleStoreMode bool) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := discardLogger()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	s.SetSingleStoreMode(singleStoreMode)

	c, err := cache.OpenBadger("", logger)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	for _, st := range []*domain.Store{
		{ID: 1, Code: "default", Name: "Default Store View"},
		{ID: 2, Code: "french", Name: "French Store View"},
	} {
		require.NoError(t, s.CreateStore(ctx, st))
	}

	color := &domain.Attribute{Code: "color", Label: "Color"}
	badges := &domain.Attribute{Code: "badges", Label: "Badges"}
	require.NoError(t, s.CreateAttribute(ctx, color))
	require.NoError(t, s.CreateAttribute(ctx, badges))

	catalog := NewLabelCatalog(s, c, DefaultCacheNamespace, logger)
	matcher := NewLabelMatcher(catalog, NewAttributeResolver(s, logger), "https://media.example.com/productlabel", logger)

	return &testEnv{
		store:      s,
		cache:      c,
		catalog:    catalog,
		labels:     NewLabelService(s, s, catalog, validation.New(), singleStoreMode, logger),
		storefront: NewStorefrontService(s, matcher, logger),
		color:      color,
		badges:     badges,
	}
}

func (e *testEnv) labelRequest(name string, attributeID, optionID int64, stores ...int64) *LabelRequest {
	return &LabelRequest{
		Name:                 name,
		AttributeID:          attributeID,
		OptionID:             optionID,
		Image:                name + ".png",
		Alt:                  name,
		PositionCategoryList: "top-right",
		PositionProductView:  "top-left",
		DisplayOn:            []string{"listing", "product"},
		Stores:               domain.NewStoreSet(stores...),
	}
}
