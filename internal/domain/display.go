package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DisplayContext identifies where a label is rendered.
type DisplayContext string

// Display contexts a label can be shown on.
const (
	DisplayListing DisplayContext = "listing"
	DisplayProduct DisplayContext = "product"
)

// ParseDisplayContext converts a raw token into a DisplayContext.
func ParseDisplayContext(raw string) (DisplayContext, error) {
	c := DisplayContext(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown display context %q", raw)
	}
	return c, nil
}

// DisplayContextFromController maps the name of the controller serving the
// request to a display context. Only the product controller renders the
// product page, every other page shows product listings.
func DisplayContextFromController(controller string) DisplayContext {
	if controller == "product" {
		return DisplayProduct
	}
	return DisplayListing
}

// Valid reports whether c is a known display context.
func (c DisplayContext) Valid() bool {
	return c == DisplayListing || c == DisplayProduct
}

// WrapperClass returns the CSS class of the block wrapping all labels of a product.
func (c DisplayContext) WrapperClass() string {
	if c == DisplayProduct {
		return "product"
	}
	return "listing"
}

func (c DisplayContext) bit() DisplaySet {
	switch c {
	case DisplayListing:
		return 1 << 0
	case DisplayProduct:
		return 1 << 1
	default:
		return 0
	}
}

// allDisplayContexts is the canonical serialization order.
var allDisplayContexts = []DisplayContext{DisplayListing, DisplayProduct}

// DisplaySet is the set of display contexts a label is eligible for.
// The zero value is the empty set.
type DisplaySet uint8

// NewDisplaySet builds a set from the given contexts, ignoring unknown ones.
func NewDisplaySet(contexts ...DisplayContext) DisplaySet {
	var s DisplaySet
	for _, c := range contexts {
		s |= c.bit()
	}
	return s
}

// ParseDisplaySet parses a comma-joined token list such as "listing,product".
// Known tokens are always returned; the error lists the unknown ones.
func ParseDisplaySet(raw string) (DisplaySet, error) {
	var (
		s       DisplaySet
		unknown []string
	)
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		c, err := ParseDisplayContext(token)
		if err != nil {
			unknown = append(unknown, token)
			continue
		}
		s |= c.bit()
	}
	if len(unknown) > 0 {
		return s, fmt.Errorf("unknown display contexts: %s", strings.Join(unknown, ","))
	}
	return s, nil
}

// Has reports whether c is a member of the set.
func (s DisplaySet) Has(c DisplayContext) bool {
	b := c.bit()
	return b != 0 && s&b == b
}

// Empty reports whether the set has no members.
func (s DisplaySet) Empty() bool {
	return s == 0
}

// Contexts returns the members in canonical order.
func (s DisplaySet) Contexts() []DisplayContext {
	out := make([]DisplayContext, 0, len(allDisplayContexts))
	for _, c := range allDisplayContexts {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// String returns the comma-joined persisted form.
func (s DisplaySet) String() string {
	contexts := s.Contexts()
	parts := make([]string, len(contexts))
	for i, c := range contexts {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}

// MarshalJSON encodes the set as its comma-joined string.
func (s DisplaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts either a comma-joined string or an array of tokens.
// Unknown tokens are dropped.
func (s *DisplaySet) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*s, _ = ParseDisplaySet(raw)
		return nil
	}

	var tokens []string
	if err := json.Unmarshal(data, &tokens); err != nil {
		return fmt.Errorf("display_on: expected string or array: %w", err)
	}
	*s, _ = ParseDisplaySet(strings.Join(tokens, ","))
	return nil
}
