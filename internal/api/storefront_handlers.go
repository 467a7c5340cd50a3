package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/productlabel/productlabel-server/internal/domain"
	domainerrors "github.com/productlabel/productlabel-server/internal/errors"
)

func (s *Server) registerStorefrontRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getProductLabels",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/{id}/labels",
		Summary:     "Get product labels",
		Description: "Returns the labels rendered on a product image, grouped by CSS class",
		Tags:        []string{"Storefront"},
	}, s.handleGetProductLabels)
}

// ProductLabelsInput contains parameters for rendering a product's labels.
type ProductLabelsInput struct {
	ID         int64  `path:"id" minimum:"0" doc:"Product ID"`
	Store      string `query:"store" doc:"Store ID or code (default: the default store)"`
	View       string `query:"view" doc:"Display context"`
	Controller string `query:"controller" doc:"Name of the page controller, used when view is empty"`
}

// StorefrontLabel is one label as rendered on a product image.
type StorefrontLabel struct {
	ID       int64  `json:"id" doc:"Label ID"`
	Name     string `json:"name" doc:"Label name"`
	Image    string `json:"image" doc:"Image file name"`
	ImageURL string `json:"image_url" doc:"Absolute image URL, empty when no image"`
	Alt      string `json:"alt" doc:"Image alt text"`
	Class    string `json:"class" doc:"CSS class the label is rendered with"`
}

// ProductLabelsResponse contains the rendered labels of a product.
type ProductLabelsResponse struct {
	ProductID    int64                        `json:"product_id" doc:"Product ID"`
	StoreID      int64                        `json:"store_id" doc:"Resolved store ID"`
	View         string                       `json:"view" doc:"Display context"`
	WrapperClass string                       `json:"wrapper_class" doc:"CSS class of the block wrapping all labels"`
	Groups       map[string][]StorefrontLabel `json:"groups" doc:"Labels grouped by CSS class"`
}

// ProductLabelsOutput wraps the product labels response for Huma.
type ProductLabelsOutput struct {
	Body ProductLabelsResponse
}

func (s *Server) handleGetProductLabels(ctx context.Context, input *ProductLabelsInput) (*ProductLabelsOutput, error) {
	view := domain.DisplayContextFromController(input.Controller)
	if input.View != "" {
		parsed, err := domain.ParseDisplayContext(input.View)
		if err != nil {
			return nil, s.apiError(domainerrors.Validation(err.Error()))
		}
		view = parsed
	}

	result, err := s.services.Storefront.ProductLabels(ctx, input.ID, input.Store, view)
	if err != nil {
		return nil, s.apiError(err)
	}

	groups := make(map[string][]StorefrontLabel, len(result.Groups))
	for class, matched := range result.Groups {
		labels := make([]StorefrontLabel, len(matched))
		for i, m := range matched {
			labels[i] = StorefrontLabel{
				ID:       m.ID,
				Name:     m.Name,
				Image:    m.Image,
				ImageURL: m.ImageURL,
				Alt:      m.Alt,
				Class:    m.Class,
			}
		}
		groups[class] = labels
	}

	return &ProductLabelsOutput{
		Body: ProductLabelsResponse{
			ProductID:    result.ProductID,
			StoreID:      result.StoreID,
			View:         string(result.View),
			WrapperClass: result.WrapperClass,
			Groups:       groups,
		},
	}, nil
}
