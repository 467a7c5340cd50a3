package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/productlabel/productlabel-server/internal/domain"
	domainerrors "github.com/productlabel/productlabel-server/internal/errors"
	"github.com/productlabel/productlabel-server/internal/logger"
	"github.com/productlabel/productlabel-server/internal/metrics"
	"github.com/productlabel/productlabel-server/internal/store"
	"github.com/productlabel/productlabel-server/internal/validation"
)

// LabelRequest is the editable part of a label.
type LabelRequest struct {
	Name                 string          `json:"name" validate:"required,max=255"`
	Active               *bool           `json:"is_active"`
	AttributeID          int64           `json:"attribute_id" validate:"required,gt=0"`
	OptionID             int64           `json:"option_id" validate:"required,gt=0"`
	Image                string          `json:"image" validate:"max=255"`
	Alt                  string          `json:"alt" validate:"max=255"`
	PositionCategoryList string          `json:"position_category_list" validate:"omitempty,css_class"`
	PositionProductView  string          `json:"position_product_view" validate:"omitempty,css_class"`
	DisplayOn            []string        `json:"display_on" validate:"dive,oneof=listing product"`
	Stores               domain.StoreSet `json:"stores"`
}

// CatalogFlusher drops cached label snapshots.
type CatalogFlusher interface {
	FlushCache(ctx context.Context) (int, error)
}

// LabelService orchestrates admin writes on labels. Every successful write
// flushes the storefront catalog cache.
type LabelService struct {
	labels          store.LabelStore
	catalog         store.CatalogStore
	cache           CatalogFlusher
	validator       *validation.Validator
	singleStoreMode bool
	logger          *slog.Logger
}

// NewLabelService creates a new label service.
func NewLabelService(
	labels store.LabelStore,
	catalog store.CatalogStore,
	cache CatalogFlusher,
	validator *validation.Validator,
	singleStoreMode bool,
	logger *slog.Logger,
) *LabelService {
	return &LabelService{
		labels:          labels,
		catalog:         catalog,
		cache:           cache,
		validator:       validator,
		singleStoreMode: singleStoreMode,
		logger:          logger,
	}
}

// GetLabel returns a label with its stores.
func (s *LabelService) GetLabel(ctx context.Context, id int64) (*domain.Label, error) {
	return s.labels.GetLabel(ctx, id)
}

// ListLabels returns the labels matching filter.
func (s *LabelService) ListLabels(ctx context.Context, filter store.LabelFilter) ([]*domain.Label, error) {
	return s.labels.ListLabels(ctx, filter)
}

// CreateLabel validates and persists a new label.
func (s *LabelService) CreateLabel(ctx context.Context, req *LabelRequest) (*domain.Label, error) {
	l := &domain.Label{}
	if err := s.apply(ctx, l, req); err != nil {
		return nil, err
	}
	if err := s.save(ctx, l); err != nil {
		return nil, err
	}

	s.log(ctx).Info("label created",
		"label_id", l.ID,
		"attribute_id", l.AttributeID,
		"option_id", l.OptionID,
		"stores", l.Stores.String(),
	)
	return l, nil
}

// UpdateLabel replaces the editable fields of an existing label.
func (s *LabelService) UpdateLabel(ctx context.Context, id int64, req *LabelRequest) (*domain.Label, error) {
	l, err := s.labels.GetLabel(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, l, req); err != nil {
		return nil, err
	}
	if err := s.save(ctx, l); err != nil {
		return nil, err
	}

	s.log(ctx).Info("label updated",
		"label_id", l.ID,
		"attribute_id", l.AttributeID,
		"option_id", l.OptionID,
		"stores", l.Stores.String(),
	)
	return l, nil
}

// UpdateLabelStores replaces only the store scope of a label.
func (s *LabelService) UpdateLabelStores(ctx context.Context, id int64, stores domain.StoreSet) (*domain.Label, error) {
	l, err := s.labels.GetLabel(ctx, id)
	if err != nil {
		return nil, err
	}

	requested, err := s.normalizeStores(ctx, stores)
	if err != nil {
		return nil, err
	}

	if err := s.labels.SyncStoreRelations(ctx, l, requested); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			metrics.LabelConflicts.Inc()
		}
		return nil, err
	}
	s.flush(ctx)

	s.log(ctx).Info("label stores updated", "label_id", l.ID, "stores", l.Stores.String())
	return l, nil
}

// DeleteLabel removes a label and its store relations.
func (s *LabelService) DeleteLabel(ctx context.Context, id int64) error {
	if err := s.labels.DeleteLabel(ctx, id); err != nil {
		return err
	}
	s.flush(ctx)

	s.log(ctx).Info("label deleted", "label_id", id)
	return nil
}

// MassDeleteLabels removes every listed label and returns how many existed.
func (s *LabelService) MassDeleteLabels(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, domainerrors.Validation("please select labels to delete")
	}

	n, err := s.labels.DeleteLabels(ctx, ids)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.flush(ctx)
	}

	s.log(ctx).Info("labels mass deleted", "requested", len(ids), "deleted", n)
	return n, nil
}

// FlushCache drops every cached storefront snapshot.
func (s *LabelService) FlushCache(ctx context.Context) (int, error) {
	return s.cache.FlushCache(ctx)
}

// apply validates req and copies it onto l.
func (s *LabelService) apply(ctx context.Context, l *domain.Label, req *LabelRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	displayOn, err := domain.ParseDisplaySet(strings.Join(req.DisplayOn, ","))
	if err != nil {
		return domainerrors.ValidationWithDetails("validation failed", map[string]string{"display_on": err.Error()})
	}

	if _, err := s.catalog.AttributeByID(ctx, req.AttributeID); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.ValidationWithDetails("validation failed",
				map[string]string{"attribute_id": fmt.Sprintf("attribute %d does not exist", req.AttributeID)})
		}
		return err
	}

	stores, err := s.normalizeStores(ctx, req.Stores)
	if err != nil {
		return err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	l.Name = strings.TrimSpace(req.Name)
	l.Active = active
	l.AttributeID = req.AttributeID
	l.OptionID = req.OptionID
	l.Image = req.Image
	l.Alt = req.Alt
	l.PositionCategoryList = req.PositionCategoryList
	l.PositionProductView = req.PositionProductView
	l.DisplayOn = displayOn
	l.Stores = stores
	return nil
}

// normalizeStores collapses the scope to the default store in single-store
// mode and otherwise checks that every store exists.
func (s *LabelService) normalizeStores(ctx context.Context, stores domain.StoreSet) (domain.StoreSet, error) {
	if s.singleStoreMode {
		return domain.NewStoreSet(domain.DefaultStoreID), nil
	}

	requested := domain.NewStoreSet(stores...)
	if len(requested) == 0 {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"stores": "is required"})
	}

	known, err := s.catalog.ListStores(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(known))
	for i, st := range known {
		ids[i] = st.ID
	}
	if unknown := requested.Difference(domain.NewStoreSet(ids...)); len(unknown) > 0 {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"stores": "unknown store ids: " + unknown.String()})
	}
	return requested, nil
}

func (s *LabelService) save(ctx context.Context, l *domain.Label) error {
	if err := s.labels.SaveLabel(ctx, l); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			metrics.LabelConflicts.Inc()
			s.log(ctx).Info("label rejected by uniqueness check",
				"label_id", l.ID,
				"attribute_id", l.AttributeID,
				"option_id", l.OptionID,
				"error", err,
			)
		}
		return err
	}
	s.flush(ctx)
	return nil
}

// flush drops the catalog cache after a write. Failures are logged only;
// the write itself already succeeded.
func (s *LabelService) flush(ctx context.Context) {
	if _, err := s.cache.FlushCache(ctx); err != nil {
		s.log(ctx).Error("failed to flush label cache", "error", err)
	}
}

// log returns the request-scoped logger when ctx carries one.
func (s *LabelService) log(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx, s.logger)
}
