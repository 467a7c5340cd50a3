package domain

import "time"

// Label is an admin-configured badge shown on product images whose
// attribute holds a given option.
//
// The JSON form is also the persisted catalog snapshot format: display_on is
// stored comma-joined and expanded to a set when decoded.
type Label struct {
	ID                   int64      `json:"id"`
	Name                 string     `json:"name"`
	Active               bool       `json:"is_active"`
	AttributeID          int64      `json:"attribute_id"`
	OptionID             int64      `json:"option_id"`
	Image                string     `json:"image"`
	Alt                  string     `json:"alt"`
	PositionCategoryList string     `json:"position_category_list"`
	PositionProductView  string     `json:"position_product_view"`
	DisplayOn            DisplaySet `json:"display_on"`
	Stores               StoreSet   `json:"stores,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Position returns the CSS position token configured for the context.
func (l *Label) Position(view DisplayContext) string {
	if view == DisplayProduct {
		return l.PositionProductView
	}
	return l.PositionCategoryList
}

// CSSClass returns the class the label is rendered with in the context,
// e.g. "top-left product" or "bottom-right category".
func (l *Label) CSSClass(view DisplayContext) string {
	switch view {
	case DisplayProduct:
		return l.Position(view) + " product"
	case DisplayListing:
		return l.Position(view) + " category"
	default:
		return ""
	}
}

// MatchedLabel is a label that applies to a product in a given context,
// decorated for rendering.
type MatchedLabel struct {
	Label
	Class    string `json:"class"`
	ImageURL string `json:"image_url"`
}
