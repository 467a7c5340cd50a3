package domain

import (
	"strconv"
	"strings"
)

// OptionValues holds the option ids selected for a product attribute.
// Single-select attributes hold one entry, multi-select ones several.
type OptionValues []string

// ParseOptionValues splits a raw attribute value such as "3,5,9".
func ParseOptionValues(raw string) OptionValues {
	out := OptionValues{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Contains reports whether the option id is selected.
func (o OptionValues) Contains(optionID int64) bool {
	want := strconv.FormatInt(optionID, 10)
	for _, v := range o {
		if v == want {
			return true
		}
	}
	return false
}

// Product is a read-only snapshot of a catalog product in a store.
type Product struct {
	ID      int64
	StoreID int64
	SKU     string
	// Values maps attribute codes to the selected options.
	Values map[string]OptionValues
}

// Value returns the options selected for the attribute code.
func (p *Product) Value(code string) (OptionValues, bool) {
	if p == nil || p.Values == nil {
		return nil, false
	}
	v, ok := p.Values[code]
	return v, ok
}

// Attribute is the metadata of a product attribute definition.
type Attribute struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"`
	Label string `json:"label"`
}

// ResolvedAttribute is an attribute together with the options a product selected for it.
type ResolvedAttribute struct {
	Attribute
	Options OptionValues
}
