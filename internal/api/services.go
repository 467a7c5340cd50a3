package api

import (
	"github.com/productlabel/productlabel-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Label      *service.LabelService      // Admin label CRUD and cache flush
	Storefront *service.StorefrontService // Product label rendering
}
