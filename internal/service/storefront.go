package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/productlabel/productlabel-server/internal/domain"
	"github.com/productlabel/productlabel-server/internal/logger"
	"github.com/productlabel/productlabel-server/internal/store"
)

// ProductLabels is the rendered label block of one product.
type ProductLabels struct {
	ProductID    int64                            `json:"product_id"`
	StoreID      int64                            `json:"store_id"`
	View         domain.DisplayContext            `json:"view"`
	WrapperClass string                           `json:"wrapper_class"`
	Groups       map[string][]domain.MatchedLabel `json:"groups"`
}

// StorefrontService answers storefront label requests for a product.
type StorefrontService struct {
	catalog store.CatalogStore
	matcher *LabelMatcher
	logger  *slog.Logger
}

// NewStorefrontService creates a new storefront service.
func NewStorefrontService(catalog store.CatalogStore, matcher *LabelMatcher, logger *slog.Logger) *StorefrontService {
	return &StorefrontService{
		catalog: catalog,
		matcher: matcher,
		logger:  logger,
	}
}

// ResolveStore finds a store by numeric id or code. An empty ref is the
// default store.
func (s *StorefrontService) ResolveStore(ctx context.Context, ref string) (*domain.Store, error) {
	if ref == "" {
		return s.catalog.GetStore(ctx, domain.DefaultStoreID)
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.catalog.GetStore(ctx, id)
	}
	return s.catalog.GetStoreByCode(ctx, ref)
}

// ProductLabels returns the labels of a product in a store and view.
// An unknown product renders no labels.
func (s *StorefrontService) ProductLabels(ctx context.Context, productID int64, storeRef string, view domain.DisplayContext) (*ProductLabels, error) {
	st, err := s.ResolveStore(ctx, storeRef)
	if err != nil {
		return nil, err
	}

	result := &ProductLabels{
		ProductID:    productID,
		StoreID:      st.ID,
		View:         view,
		WrapperClass: view.WrapperClass(),
		Groups:       map[string][]domain.MatchedLabel{},
	}
	if productID == 0 {
		return result, nil
	}

	product, err := s.catalog.LoadProduct(ctx, productID, st.ID)
	if errors.Is(err, store.ErrProductNotFound) {
		logger.FromContext(ctx, s.logger).Debug("no labels for unknown product", "product_id", productID, "store_id", st.ID)
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	groups, err := s.matcher.MatchLabels(ctx, product, view)
	if err != nil {
		return nil, err
	}
	result.Groups = groups
	return result, nil
}
