package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/productlabel/productlabel-server/internal/domain"
	domainerrors "github.com/productlabel/productlabel-server/internal/errors"
	"github.com/productlabel/productlabel-server/internal/service"
	"github.com/productlabel/productlabel-server/internal/store"
)

func (s *Server) registerLabelRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listLabels",
		Method:      http.MethodGet,
		Path:        "/api/v1/labels",
		Summary:     "List labels",
		Description: "Returns all product labels, optionally filtered",
		Tags:        []string{"Labels"},
	}, s.handleListLabels)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createLabel",
		Method:        http.MethodPost,
		Path:          "/api/v1/labels",
		Summary:       "Create label",
		Description:   "Creates a label. Fails with 409 when another label already covers the attribute option in an overlapping store scope",
		Tags:          []string{"Labels"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateLabel)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLabel",
		Method:      http.MethodGet,
		Path:        "/api/v1/labels/{id}",
		Summary:     "Get label",
		Description: "Returns a label by ID",
		Tags:        []string{"Labels"},
	}, s.handleGetLabel)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateLabel",
		Method:      http.MethodPut,
		Path:        "/api/v1/labels/{id}",
		Summary:     "Update label",
		Description: "Replaces a label and its store scope",
		Tags:        []string{"Labels"},
	}, s.handleUpdateLabel)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateLabelStores",
		Method:      http.MethodPut,
		Path:        "/api/v1/labels/{id}/stores",
		Summary:     "Update label stores",
		Description: "Replaces only the store scope of a label",
		Tags:        []string{"Labels"},
	}, s.handleUpdateLabelStores)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteLabel",
		Method:        http.MethodDelete,
		Path:          "/api/v1/labels/{id}",
		Summary:       "Delete label",
		Description:   "Deletes a label and its store relations",
		Tags:          []string{"Labels"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteLabel)

	huma.Register(s.api, huma.Operation{
		OperationID: "massDeleteLabels",
		Method:      http.MethodPost,
		Path:        "/api/v1/labels/mass-delete",
		Summary:     "Mass delete labels",
		Description: "Deletes every listed label and reports how many existed",
		Tags:        []string{"Labels"},
	}, s.handleMassDeleteLabels)

	huma.Register(s.api, huma.Operation{
		OperationID: "flushLabelCache",
		Method:      http.MethodPost,
		Path:        "/api/v1/labels/cache/flush",
		Summary:     "Flush label cache",
		Description: "Drops every cached storefront label snapshot",
		Tags:        []string{"Labels"},
	}, s.handleFlushLabelCache)
}

// === DTOs ===

// LabelResponse contains label data in API responses.
type LabelResponse struct {
	ID                   int64     `json:"id" doc:"Label ID"`
	Name                 string    `json:"name" doc:"Admin-facing name"`
	IsActive             bool      `json:"is_active" doc:"Whether the label is rendered"`
	AttributeID          int64     `json:"attribute_id" doc:"Product attribute the label matches on"`
	OptionID             int64     `json:"option_id" doc:"Attribute option that triggers the label"`
	Image                string    `json:"image" doc:"Image file name"`
	Alt                  string    `json:"alt" doc:"Image alt text"`
	PositionCategoryList string    `json:"position_category_list" doc:"CSS position token on listings"`
	PositionProductView  string    `json:"position_product_view" doc:"CSS position token on the product page"`
	DisplayOn            []string  `json:"display_on" doc:"Display contexts: listing, product"`
	Stores               []int64   `json:"stores" doc:"Store IDs, 0 means all stores"`
	CreatedAt            time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt            time.Time `json:"updated_at" doc:"Last update time"`
}

// StoreScope is a store ID list in a request body. It accepts a JSON array,
// a single ID or a comma-joined string such as "1,2".
type StoreScope domain.StoreSet

// UnmarshalJSON normalizes any accepted form into a sorted ID set.
func (s *StoreScope) UnmarshalJSON(data []byte) error {
	return (*domain.StoreSet)(s).UnmarshalJSON(data)
}

// Schema describes the accepted forms for request validation and OpenAPI.
func (StoreScope) Schema(huma.Registry) *huma.Schema {
	minID := 0.0
	storeID := &huma.Schema{Type: huma.TypeInteger, Minimum: &minID}
	return &huma.Schema{
		Description: "Store IDs as an array, a single ID or a comma-joined string",
		OneOf: []*huma.Schema{
			{Type: huma.TypeArray, Items: storeID},
			{Type: huma.TypeInteger, Minimum: &minID},
			{Type: huma.TypeString},
		},
	}
}

// ListLabelsInput contains parameters for listing labels.
type ListLabelsInput struct {
	Active      bool   `query:"active" doc:"Only return active labels"`
	AttributeID int64  `query:"attribute_id" doc:"Only return labels on this attribute"`
	Store       string `query:"store" doc:"Only return labels bound to this store ID"`
}

// ListLabelsResponse contains a list of labels.
type ListLabelsResponse struct {
	Labels []LabelResponse `json:"labels" doc:"List of labels"`
}

// ListLabelsOutput wraps the list labels response for Huma.
type ListLabelsOutput struct {
	Body ListLabelsResponse
}

// LabelRequest is the request body for creating or replacing a label.
type LabelRequest struct {
	Name                 string     `json:"name" maxLength:"255" doc:"Admin-facing name"`
	IsActive             *bool      `json:"is_active,omitempty" doc:"Whether the label is rendered (default true)"`
	AttributeID          int64      `json:"attribute_id" doc:"Product attribute the label matches on"`
	OptionID             int64      `json:"option_id" doc:"Attribute option that triggers the label"`
	Image                string     `json:"image,omitempty" maxLength:"255" doc:"Image file name"`
	Alt                  string     `json:"alt,omitempty" maxLength:"255" doc:"Image alt text"`
	PositionCategoryList string     `json:"position_category_list,omitempty" doc:"CSS position token on listings, e.g. top-left"`
	PositionProductView  string     `json:"position_product_view,omitempty" doc:"CSS position token on the product page"`
	DisplayOn            []string   `json:"display_on,omitempty" doc:"Display contexts: listing, product"`
	Stores               StoreScope `json:"stores,omitempty" doc:"Store IDs, 0 means all stores"`
}

// CreateLabelInput wraps the create label request for Huma.
type CreateLabelInput struct {
	Body LabelRequest
}

// LabelOutput wraps the label response for Huma.
type LabelOutput struct {
	Body LabelResponse
}

// LabelIDInput contains the label ID path parameter.
type LabelIDInput struct {
	ID int64 `path:"id" minimum:"1" doc:"Label ID"`
}

// UpdateLabelInput wraps the update label request for Huma.
type UpdateLabelInput struct {
	ID   int64 `path:"id" minimum:"1" doc:"Label ID"`
	Body LabelRequest
}

// UpdateLabelStoresRequest is the request body for replacing a label's stores.
type UpdateLabelStoresRequest struct {
	Stores StoreScope `json:"stores" doc:"Store IDs, 0 means all stores"`
}

// UpdateLabelStoresInput wraps the update label stores request for Huma.
type UpdateLabelStoresInput struct {
	ID   int64 `path:"id" minimum:"1" doc:"Label ID"`
	Body UpdateLabelStoresRequest
}

// MassDeleteLabelsRequest is the request body for deleting several labels.
type MassDeleteLabelsRequest struct {
	IDs []int64 `json:"ids" doc:"Label IDs to delete"`
}

// MassDeleteLabelsInput wraps the mass delete request for Huma.
type MassDeleteLabelsInput struct {
	Body MassDeleteLabelsRequest
}

// MassDeleteLabelsResponse reports how many labels were deleted.
type MassDeleteLabelsResponse struct {
	Deleted int `json:"deleted" doc:"Number of labels deleted"`
}

// MassDeleteLabelsOutput wraps the mass delete response for Huma.
type MassDeleteLabelsOutput struct {
	Body MassDeleteLabelsResponse
}

// FlushLabelCacheResponse reports how many cache entries were dropped.
type FlushLabelCacheResponse struct {
	Flushed int `json:"flushed" doc:"Number of cached store snapshots dropped"`
}

// FlushLabelCacheOutput wraps the flush response for Huma.
type FlushLabelCacheOutput struct {
	Body FlushLabelCacheResponse
}

// === Handlers ===

func (s *Server) handleListLabels(ctx context.Context, input *ListLabelsInput) (*ListLabelsOutput, error) {
	filter := store.LabelFilter{
		ActiveOnly:  input.Active,
		AttributeID: input.AttributeID,
	}
	if input.Store != "" {
		storeID, err := strconv.ParseInt(input.Store, 10, 64)
		if err != nil || storeID < 0 {
			return nil, s.apiError(domainerrors.ValidationWithDetails("validation failed",
				map[string]string{"store": "must be a store ID"}))
		}
		filter.StoreID = &storeID
	}

	labels, err := s.services.Label.ListLabels(ctx, filter)
	if err != nil {
		return nil, s.apiError(err)
	}

	resp := make([]LabelResponse, len(labels))
	for i, l := range labels {
		resp[i] = toLabelResponse(l)
	}

	return &ListLabelsOutput{Body: ListLabelsResponse{Labels: resp}}, nil
}

func (s *Server) handleCreateLabel(ctx context.Context, input *CreateLabelInput) (*LabelOutput, error) {
	l, err := s.services.Label.CreateLabel(ctx, input.Body.toServiceRequest())
	if err != nil {
		return nil, s.apiError(err)
	}

	return &LabelOutput{Body: toLabelResponse(l)}, nil
}

func (s *Server) handleGetLabel(ctx context.Context, input *LabelIDInput) (*LabelOutput, error) {
	l, err := s.services.Label.GetLabel(ctx, input.ID)
	if err != nil {
		return nil, s.apiError(err)
	}

	return &LabelOutput{Body: toLabelResponse(l)}, nil
}

func (s *Server) handleUpdateLabel(ctx context.Context, input *UpdateLabelInput) (*LabelOutput, error) {
	l, err := s.services.Label.UpdateLabel(ctx, input.ID, input.Body.toServiceRequest())
	if err != nil {
		return nil, s.apiError(err)
	}

	return &LabelOutput{Body: toLabelResponse(l)}, nil
}

func (s *Server) handleUpdateLabelStores(ctx context.Context, input *UpdateLabelStoresInput) (*LabelOutput, error) {
	l, err := s.services.Label.UpdateLabelStores(ctx, input.ID, domain.StoreSet(input.Body.Stores))
	if err != nil {
		return nil, s.apiError(err)
	}

	return &LabelOutput{Body: toLabelResponse(l)}, nil
}

func (s *Server) handleDeleteLabel(ctx context.Context, input *LabelIDInput) (*struct{}, error) {
	if err := s.services.Label.DeleteLabel(ctx, input.ID); err != nil {
		return nil, s.apiError(err)
	}
	return nil, nil
}

func (s *Server) handleMassDeleteLabels(ctx context.Context, input *MassDeleteLabelsInput) (*MassDeleteLabelsOutput, error) {
	n, err := s.services.Label.MassDeleteLabels(ctx, input.Body.IDs)
	if err != nil {
		return nil, s.apiError(err)
	}

	return &MassDeleteLabelsOutput{Body: MassDeleteLabelsResponse{Deleted: n}}, nil
}

func (s *Server) handleFlushLabelCache(ctx context.Context, _ *struct{}) (*FlushLabelCacheOutput, error) {
	n, err := s.services.Label.FlushCache(ctx)
	if err != nil {
		return nil, s.apiError(err)
	}

	return &FlushLabelCacheOutput{Body: FlushLabelCacheResponse{Flushed: n}}, nil
}

// === Mapping ===

func (r LabelRequest) toServiceRequest() *service.LabelRequest {
	return &service.LabelRequest{
		Name:                 r.Name,
		Active:               r.IsActive,
		AttributeID:          r.AttributeID,
		OptionID:             r.OptionID,
		Image:                r.Image,
		Alt:                  r.Alt,
		PositionCategoryList: r.PositionCategoryList,
		PositionProductView:  r.PositionProductView,
		DisplayOn:            r.DisplayOn,
		Stores:               domain.StoreSet(r.Stores),
	}
}

func toLabelResponse(l *domain.Label) LabelResponse {
	displayOn := make([]string, 0, 2)
	for _, c := range l.DisplayOn.Contexts() {
		displayOn = append(displayOn, string(c))
	}
	stores := []int64(l.Stores)
	if stores == nil {
		stores = []int64{}
	}

	return LabelResponse{
		ID:                   l.ID,
		Name:                 l.Name,
		IsActive:             l.Active,
		AttributeID:          l.AttributeID,
		OptionID:             l.OptionID,
		Image:                l.Image,
		Alt:                  l.Alt,
		PositionCategoryList: l.PositionCategoryList,
		PositionProductView:  l.PositionProductView,
		DisplayOn:            displayOn,
		Stores:               stores,
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.UpdatedAt,
	}
}
