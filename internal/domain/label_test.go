package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDisplaySet(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    DisplaySet
		wantErr bool
	}{
		{"both", "listing,product", NewDisplaySet(DisplayListing, DisplayProduct), false},
		{"reversed order", "product,listing", NewDisplaySet(DisplayListing, DisplayProduct), false},
		{"single", "product", NewDisplaySet(DisplayProduct), false},
		{"whitespace and case", " Listing , ", NewDisplaySet(DisplayListing), false},
		{"empty", "", DisplaySet(0), false},
		{"unknown token kept out", "listing,cart", NewDisplaySet(DisplayListing), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDisplaySet(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDisplaySet_RoundTrip(t *testing.T) {
	set := NewDisplaySet(DisplayProduct, DisplayListing)

	assert.Equal(t, "listing,product", set.String())

	parsed, err := ParseDisplaySet(set.String())
	require.NoError(t, err)
	assert.Equal(t, set, parsed)
	assert.ElementsMatch(t, []DisplayContext{DisplayListing, DisplayProduct}, parsed.Contexts())
}

func TestDisplaySet_JSON(t *testing.T) {
	data, err := json.Marshal(NewDisplaySet(DisplayListing, DisplayProduct))
	require.NoError(t, err)
	assert.JSONEq(t, `"listing,product"`, string(data))

	var fromString DisplaySet
	require.NoError(t, json.Unmarshal([]byte(`"product"`), &fromString))
	assert.True(t, fromString.Has(DisplayProduct))
	assert.False(t, fromString.Has(DisplayListing))

	var fromArray DisplaySet
	require.NoError(t, json.Unmarshal([]byte(`["listing","product"]`), &fromArray))
	assert.Equal(t, NewDisplaySet(DisplayListing, DisplayProduct), fromArray)

	var fromNumber DisplaySet
	assert.Error(t, json.Unmarshal([]byte(`5`), &fromNumber))
}

func TestDisplayContextFromController(t *testing.T) {
	assert.Equal(t, DisplayProduct, DisplayContextFromController("product"))
	assert.Equal(t, DisplayListing, DisplayContextFromController("category"))
	assert.Equal(t, DisplayListing, DisplayContextFromController("result"))

	assert.Equal(t, "product", DisplayProduct.WrapperClass())
	assert.Equal(t, "listing", DisplayListing.WrapperClass())
}

func TestParseStoreSet(t *testing.T) {
	got, err := ParseStoreSet("3, 1,1,0")
	require.NoError(t, err)
	assert.Equal(t, StoreSet{0, 1, 3}, got)
	assert.True(t, got.IncludesDefault())

	_, err = ParseStoreSet("1,abc")
	assert.Error(t, err)

	_, err = ParseStoreSet("-1")
	assert.Error(t, err)
}

func TestStoreSet_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want StoreSet
	}{
		{"array of numbers", `[2, 1, 2]`, StoreSet{1, 2}},
		{"array of strings", `["0", "4"]`, StoreSet{0, 4}},
		{"single number", `3`, StoreSet{3}},
		{"comma string", `"1,2"`, StoreSet{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StoreSet
			require.NoError(t, json.Unmarshal([]byte(tt.json), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoreSet_Difference(t *testing.T) {
	old := NewStoreSet(0, 1, 2)
	requested := NewStoreSet(2, 3)

	assert.Equal(t, StoreSet{0, 1}, old.Difference(requested))
	assert.Equal(t, StoreSet{3}, requested.Difference(old))
	assert.Empty(t, requested.Difference(requested))
	assert.Equal(t, StoreSet{0, 2, 3}, requested.With(0))
	assert.False(t, requested.IncludesDefault())
}

func TestParseOptionValues(t *testing.T) {
	values := ParseOptionValues("3, 5,,9")

	assert.Equal(t, OptionValues{"3", "5", "9"}, values)
	assert.True(t, values.Contains(5))
	assert.False(t, values.Contains(4))
	assert.Empty(t, ParseOptionValues(""))
}

func TestLabel_CSSClass(t *testing.T) {
	l := &Label{PositionCategoryList: "bottom-right", PositionProductView: "top-left"}

	assert.Equal(t, "top-left product", l.CSSClass(DisplayProduct))
	assert.Equal(t, "bottom-right category", l.CSSClass(DisplayListing))
	assert.Equal(t, "top-left", l.Position(DisplayProduct))
	assert.Empty(t, l.CSSClass(DisplayContext("cart")))
}

func TestLabel_SnapshotJSON(t *testing.T) {
	l := &Label{
		ID:          7,
		Name:        "New",
		Active:      true,
		AttributeID: 10,
		OptionID:    5,
		DisplayOn:   NewDisplaySet(DisplayListing, DisplayProduct),
	}

	data, err := json.Marshal(l)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"display_on":"listing,product"`)
	assert.NotContains(t, string(data), `"stores"`)

	var decoded Label
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, l.DisplayOn, decoded.DisplayOn)
	assert.Equal(t, l.AttributeID, decoded.AttributeID)
}
