package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/productlabel/productlabel-server/internal/domain"
	domainerrors "github.com/productlabel/productlabel-server/internal/errors"
)

// AttributeMetadataProvider looks up attribute definitions by id.
type AttributeMetadataProvider interface {
	AttributeByID(ctx context.Context, id int64) (*domain.Attribute, error)
}

// AttributeResolver reads the options a product selected for a set of attributes.
type AttributeResolver struct {
	attributes AttributeMetadataProvider
	logger     *slog.Logger
}

// NewAttributeResolver creates a new attribute resolver.
func NewAttributeResolver(attributes AttributeMetadataProvider, logger *slog.Logger) *AttributeResolver {
	return &AttributeResolver{
		attributes: attributes,
		logger:     logger,
	}
}

// ResolveOptionValues maps each distinct attribute id to its metadata and
// the options the product selected for it. Attributes that cannot be
// resolved are left out; labels on them simply never match.
func (r *AttributeResolver) ResolveOptionValues(ctx context.Context, product *domain.Product, attributeIDs []int64) map[int64]domain.ResolvedAttribute {
	resolved := make(map[int64]domain.ResolvedAttribute, len(attributeIDs))
	if product == nil {
		return resolved
	}

	for _, id := range attributeIDs {
		if _, seen := resolved[id]; seen {
			continue
		}

		attr, err := r.attributes.AttributeByID(ctx, id)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				r.logger.Debug("skipping unknown label attribute", "attribute_id", id)
			} else {
				r.logger.Warn("failed to resolve label attribute", "attribute_id", id, "error", err)
			}
			continue
		}

		options, ok := product.Value(attr.Code)
		if !ok {
			options = domain.OptionValues{}
		}
		resolved[id] = domain.ResolvedAttribute{Attribute: *attr, Options: options}
	}

	return resolved
}
