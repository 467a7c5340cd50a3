// Package store defines the persistence interfaces for product labels and
// the catalog data they are matched against.
package store

import (
	"context"

	"github.com/productlabel/productlabel-server/internal/domain"
)

// LabelFilter narrows ListLabels results. Zero values disable a filter.
type LabelFilter struct {
	ActiveOnly  bool
	AttributeID int64
	StoreID     *int64
}

// LabelStore persists labels and their store relations.
type LabelStore interface {
	// SaveLabel creates (ID == 0) or updates a label and synchronizes its
	// store relations in one write. A uniqueness conflict aborts the whole
	// write with an ALREADY_EXISTS error and nothing is persisted.
	SaveLabel(ctx context.Context, label *domain.Label) error
	GetLabel(ctx context.Context, id int64) (*domain.Label, error)
	ListLabels(ctx context.Context, filter LabelFilter) ([]*domain.Label, error)
	// ListActiveLabels returns active labels bound to storeID or to the default store.
	ListActiveLabels(ctx context.Context, storeID int64) ([]*domain.Label, error)
	DeleteLabel(ctx context.Context, id int64) error
	DeleteLabels(ctx context.Context, ids []int64) (int, error)
	GetStoreIDs(ctx context.Context, labelID int64) (domain.StoreSet, error)
	SyncStoreRelations(ctx context.Context, label *domain.Label, requested domain.StoreSet) error
}

// CatalogStore reads the stores, attributes and products labels are matched against.
type CatalogStore interface {
	AttributeByID(ctx context.Context, id int64) (*domain.Attribute, error)
	LoadProduct(ctx context.Context, productID, storeID int64) (*domain.Product, error)
	GetStore(ctx context.Context, id int64) (*domain.Store, error)
	GetStoreByCode(ctx context.Context, code string) (*domain.Store, error)
	ListStores(ctx context.Context) ([]*domain.Store, error)
}

// Store is the full persistence surface.
type Store interface {
	LabelStore
	CatalogStore
	Close() error
}
