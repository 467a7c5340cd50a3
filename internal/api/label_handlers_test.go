package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLabel(t *testing.T) {
	ts := setupTestServer(t, Options{})

	got := ts.createLabel(t, labelBody("Sale", ts.color.ID, 5, 2, 1, 2))

	assert.NotZero(t, got.ID)
	assert.Equal(t, "Sale", got.Name)
	assert.True(t, got.IsActive)
	assert.Equal(t, ts.color.ID, got.AttributeID)
	assert.Equal(t, int64(5), got.OptionID)
	assert.Equal(t, []string{"listing", "product"}, got.DisplayOn)
	assert.Equal(t, []int64{1, 2}, got.Stores)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreateLabel_Conflict(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.createLabel(t, labelBody("First", ts.color.ID, 5, 1))

	resp := ts.api.Post("/api/v1/labels", labelBody("Second", ts.color.ID, 5, 1, 2))
	require.Equal(t, http.StatusConflict, resp.Code, resp.Body.String())

	apiErr := decodeError(t, resp)
	assert.Equal(t, "ALREADY_EXISTS", apiErr.Code)
	assert.Equal(t, fmt.Sprintf("Label for attribute %d, option 5, and store 1 already exist.", ts.color.ID), apiErr.Message)
	details, ok := apiErr.Details.(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 1, details["store_id"], 0)

	list := ts.api.Get("/api/v1/labels")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Len(t, decodeData[ListLabelsResponse](t, list).Labels, 1)
}

func TestCreateLabel_DefaultScopeConflictsWithAnyStore(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.createLabel(t, labelBody("Store two", ts.color.ID, 5, 2))

	resp := ts.api.Post("/api/v1/labels", labelBody("All stores", ts.color.ID, 5, 0))
	assert.Equal(t, http.StatusConflict, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/labels", labelBody("Other option", ts.color.ID, 6, 0))
	assert.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
}

func TestCreateLabel_Validation(t *testing.T) {
	ts := setupTestServer(t, Options{})

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{
			name:  "missing stores",
			body:  labelBody("No stores", ts.color.ID, 5),
			field: "stores",
		},
		{
			name:  "unknown store",
			body:  labelBody("Bad store", ts.color.ID, 5, 9),
			field: "stores",
		},
		{
			name:  "unknown attribute",
			body:  labelBody("Bad attribute", 999, 5, 1),
			field: "attribute_id",
		},
		{
			name: "bad position",
			body: func() map[string]any {
				b := labelBody("Bad position", ts.color.ID, 5, 1)
				b["position_category_list"] = "top left"
				return b
			}(),
			field: "position_category_list",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/labels", tt.body)
			require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

			apiErr := decodeError(t, resp)
			assert.Equal(t, "VALIDATION", apiErr.Code)
			details, ok := apiErr.Details.(map[string]any)
			require.True(t, ok, resp.Body.String())
			assert.Contains(t, details, tt.field)
		})
	}
}

func TestCreateLabel_StoreScopeForms(t *testing.T) {
	ts := setupTestServer(t, Options{})

	tests := []struct {
		name   string
		stores any
		want   []int64
	}{
		{name: "comma-joined string", stores: "2, 1,2", want: []int64{1, 2}},
		{name: "single id", stores: 2, want: []int64{2}},
		{name: "single id as string", stores: "0", want: []int64{0}},
		{name: "array", stores: []int64{2, 1}, want: []int64{1, 2}},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := labelBody(tt.name, ts.color.ID, int64(100+i))
			body["stores"] = tt.stores

			got := ts.createLabel(t, body)
			assert.Equal(t, tt.want, got.Stores)
		})
	}
}

func TestCreateLabel_InvalidStoreScope(t *testing.T) {
	ts := setupTestServer(t, Options{})

	for _, stores := range []any{"1,x", -1, true} {
		body := labelBody("Bad stores", ts.color.ID, 5)
		body["stores"] = stores

		resp := ts.api.Post("/api/v1/labels", body)
		require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
		assert.Equal(t, "VALIDATION", decodeError(t, resp).Code)
	}
}

func TestCreateLabel_MissingRequiredField(t *testing.T) {
	ts := setupTestServer(t, Options{})

	body := labelBody("", ts.color.ID, 5, 1)
	delete(body, "name")

	resp := ts.api.Post("/api/v1/labels", body)
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	assert.Equal(t, "VALIDATION", decodeError(t, resp).Code)
}

func TestGetLabel(t *testing.T) {
	ts := setupTestServer(t, Options{})
	created := ts.createLabel(t, labelBody("Sale", ts.color.ID, 5, 1))

	resp := ts.api.Get(fmt.Sprintf("/api/v1/labels/%d", created.ID))
	require.Equal(t, http.StatusOK, resp.Code)
	got := decodeData[LabelResponse](t, resp)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, []int64{1}, got.Stores)

	resp = ts.api.Get("/api/v1/labels/999")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)
}

func TestListLabels_Filters(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.createLabel(t, labelBody("Color", ts.color.ID, 5, 1))
	inactive := labelBody("Badge", ts.badges.ID, 3, 2)
	inactive["is_active"] = false
	ts.createLabel(t, inactive)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all", "", []string{"Color", "Badge"}},
		{"active", "?active=true", []string{"Color"}},
		{"attribute", fmt.Sprintf("?attribute_id=%d", ts.badges.ID), []string{"Badge"}},
		{"store", "?store=2", []string{"Badge"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/api/v1/labels" + tt.query)
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

			var names []string
			for _, l := range decodeData[ListLabelsResponse](t, resp).Labels {
				names = append(names, l.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	resp := ts.api.Get("/api/v1/labels?store=abc")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdateLabel(t *testing.T) {
	ts := setupTestServer(t, Options{})
	created := ts.createLabel(t, labelBody("Sale", ts.color.ID, 5, 1))

	body := labelBody("Big sale", ts.color.ID, 6, 2)
	body["display_on"] = []string{"product"}
	resp := ts.api.Put(fmt.Sprintf("/api/v1/labels/%d", created.ID), body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	got := decodeData[LabelResponse](t, resp)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Big sale", got.Name)
	assert.Equal(t, int64(6), got.OptionID)
	assert.Equal(t, []string{"product"}, got.DisplayOn)
	assert.Equal(t, []int64{2}, got.Stores)

	resp = ts.api.Put("/api/v1/labels/999", body)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateLabelStores(t *testing.T) {
	ts := setupTestServer(t, Options{})
	first := ts.createLabel(t, labelBody("First", ts.color.ID, 5, 1))
	second := ts.createLabel(t, labelBody("Second", ts.color.ID, 5, 2))

	path := fmt.Sprintf("/api/v1/labels/%d/stores", first.ID)

	resp := ts.api.Put(path, map[string]any{"stores": []int64{1, 2}})
	require.Equal(t, http.StatusConflict, resp.Code, resp.Body.String())

	resp = ts.api.Get(fmt.Sprintf("/api/v1/labels/%d", first.ID))
	assert.Equal(t, []int64{1}, decodeData[LabelResponse](t, resp).Stores)

	resp = ts.api.Delete(fmt.Sprintf("/api/v1/labels/%d", second.ID))
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Put(path, map[string]any{"stores": []int64{2, 1}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, []int64{1, 2}, decodeData[LabelResponse](t, resp).Stores)

	resp = ts.api.Put(path, map[string]any{"stores": "2"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, []int64{2}, decodeData[LabelResponse](t, resp).Stores)
}

func TestDeleteLabel(t *testing.T) {
	ts := setupTestServer(t, Options{})
	created := ts.createLabel(t, labelBody("Sale", ts.color.ID, 5, 1))
	path := fmt.Sprintf("/api/v1/labels/%d", created.ID)

	resp := ts.api.Delete(path)
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	resp = ts.api.Get(path)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete(path)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestMassDeleteLabels(t *testing.T) {
	ts := setupTestServer(t, Options{})
	a := ts.createLabel(t, labelBody("A", ts.color.ID, 5, 1))
	b := ts.createLabel(t, labelBody("B", ts.color.ID, 6, 1))

	resp := ts.api.Post("/api/v1/labels/mass-delete", map[string]any{"ids": []int64{a.ID, b.ID, 999}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, 2, decodeData[MassDeleteLabelsResponse](t, resp).Deleted)

	resp = ts.api.Post("/api/v1/labels/mass-delete", map[string]any{"ids": []int64{}})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "please select labels to delete", decodeError(t, resp).Message)
}

func TestFlushLabelCache(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.createLabel(t, labelBody("Sale", ts.color.ID, 5, 0))
	productID := ts.createProduct(t, "SKU-1", nil)

	// Warm the snapshots of two stores.
	for _, store := range []string{"1", "2"} {
		resp := ts.api.Get(fmt.Sprintf("/api/v1/products/%d/labels?store=%s", productID, store))
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp := ts.api.Post("/api/v1/labels/cache/flush")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, 2, decodeData[FlushLabelCacheResponse](t, resp).Flushed)

	resp = ts.api.Post("/api/v1/labels/cache/flush")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Zero(t, decodeData[FlushLabelCacheResponse](t, resp).Flushed)
}
