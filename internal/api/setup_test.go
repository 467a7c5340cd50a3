package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/productlabel/productlabel-server/internal/cache"
	"github.com/productlabel/productlabel-server/internal/domain"
	"github.com/productlabel/productlabel-server/internal/service"
	"github.com/productlabel/productlabel-server/internal/store/sqlite"
	"github.com/productlabel/productlabel-server/internal/validation"
)

// testServer wraps the API server with direct store access for fixtures.
type testServer struct {
	*Server
	api   humatest.TestAPI
	store *sqlite.Store
	logs  *bytes.Buffer

	color  *domain.Attribute
	badges *domain.Attribute
}

// testEnvelope mirrors APIEnvelope with a typed payload.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	ctx := context.Background()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelInfo}))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	c, err := cache.OpenBadger("", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	for _, s := range []*domain.Store{
		{ID: 1, Code: "default", Name: "Default Store View"},
		{ID: 2, Code: "french", Name: "French Store View"},
	} {
		require.NoError(t, st.CreateStore(ctx, s))
	}
	color := &domain.Attribute{Code: "color", Label: "Color"}
	badges := &domain.Attribute{Code: "badges", Label: "Badges"}
	require.NoError(t, st.CreateAttribute(ctx, color))
	require.NoError(t, st.CreateAttribute(ctx, badges))

	catalog := service.NewLabelCatalog(st, c, service.DefaultCacheNamespace, logger)
	matcher := service.NewLabelMatcher(catalog, service.NewAttributeResolver(st, logger), "https://media.example.com/productlabel/", logger)

	services := &Services{
		Label:      service.NewLabelService(st, st, catalog, validation.New(), false, logger),
		Storefront: service.NewStorefrontService(st, matcher, logger),
	}

	s := NewServer(services, HealthChecks{"database": st, "cache": c}, opts, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  st,
		logs:   logs,
		color:  color,
		badges: badges,
	}
}

// labelBody returns a valid create request body.
func labelBody(name string, attributeID, optionID int64, stores ...int64) map[string]any {
	body := map[string]any{
		"name":                   name,
		"attribute_id":           attributeID,
		"option_id":              optionID,
		"image":                  name + ".png",
		"alt":                    name,
		"position_category_list": "top-right",
		"position_product_view":  "top-left",
		"display_on":             []string{"listing", "product"},
	}
	if len(stores) > 0 {
		body["stores"] = stores
	}
	return body
}

// createLabel creates a label through the API and returns it.
func (ts *testServer) createLabel(t *testing.T, body map[string]any) LabelResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/labels", body)
	require.Equal(t, 201, resp.Code, "create failed: %s", resp.Body.String())
	return decodeData[LabelResponse](t, resp)
}

// createProduct inserts a product with store 0 attribute values.
func (ts *testServer) createProduct(t *testing.T, sku string, values map[string]domain.OptionValues) int64 {
	t.Helper()
	p := &domain.Product{SKU: sku, Values: values}
	require.NoError(t, ts.store.CreateProduct(context.Background(), p))
	return p.ID
}

func decodeData[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), resp.Body.String())
	require.True(t, envelope.Success, resp.Body.String())
	require.Equal(t, EnvelopeVersion, envelope.Version)
	return envelope.Data
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) APIErrorEnvelope {
	t.Helper()
	var envelope APIErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), resp.Body.String())
	require.False(t, envelope.Success)
	return envelope
}
