package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/productlabel/productlabel-server/internal/domain"
	domainerrors "github.com/productlabel/productlabel-server/internal/errors"
	"github.com/productlabel/productlabel-server/internal/metrics"
)

// ActiveLabelCatalog provides the active labels of a store.
type ActiveLabelCatalog interface {
	GetActiveLabels(ctx context.Context, storeID int64) ([]*domain.Label, error)
}

// LabelMatcher computes the labels a product shows in a display context.
type LabelMatcher struct {
	catalog      ActiveLabelCatalog
	resolver     *AttributeResolver
	mediaBaseURL string
	logger       *slog.Logger
}

// NewLabelMatcher creates a new label matcher. Label images resolve
// against mediaBaseURL.
func NewLabelMatcher(catalog ActiveLabelCatalog, resolver *AttributeResolver, mediaBaseURL string, logger *slog.Logger) *LabelMatcher {
	return &LabelMatcher{
		catalog:      catalog,
		resolver:     resolver,
		mediaBaseURL: strings.TrimRight(mediaBaseURL, "/"),
		logger:       logger,
	}
}

// MatchLabels returns the labels matching the product in view, grouped by
// CSS class. Within a group labels keep catalog order.
// A product without an id yields an empty result.
func (m *LabelMatcher) MatchLabels(ctx context.Context, product *domain.Product, view domain.DisplayContext) (map[string][]domain.MatchedLabel, error) {
	groups := make(map[string][]domain.MatchedLabel)
	if product == nil || product.ID == 0 {
		return groups, nil
	}
	if !view.Valid() {
		return nil, domainerrors.Validationf("unknown display context %q", view)
	}

	labels, err := m.catalog.GetActiveLabels(ctx, product.StoreID)
	if err != nil {
		return nil, fmt.Errorf("match labels for product %d: %w", product.ID, err)
	}
	if len(labels) == 0 {
		return groups, nil
	}

	attributeIDs := make([]int64, 0, len(labels))
	for _, l := range labels {
		attributeIDs = append(attributeIDs, l.AttributeID)
	}
	resolved := m.resolver.ResolveOptionValues(ctx, product, attributeIDs)

	matched := 0
	for _, l := range labels {
		attr, ok := resolved[l.AttributeID]
		if !ok {
			continue
		}
		if !attr.Options.Contains(l.OptionID) || !l.DisplayOn.Has(view) {
			continue
		}

		class := l.CSSClass(view)
		groups[class] = append(groups[class], domain.MatchedLabel{
			Label:    *l,
			Class:    class,
			ImageURL: m.ImageURL(l.Image),
		})
		matched++
	}

	metrics.MatchedLabels.WithLabelValues(string(view)).Add(float64(matched))
	m.logger.Debug("labels matched",
		"product_id", product.ID,
		"store_id", product.StoreID,
		"view", view,
		"matched", matched,
	)
	return groups, nil
}

// ImageURL resolves a stored image file name against the media base URL.
func (m *LabelMatcher) ImageURL(image string) string {
	if image == "" {
		return ""
	}
	return m.mediaBaseURL + "/" + strings.TrimLeft(image, "/")
}
