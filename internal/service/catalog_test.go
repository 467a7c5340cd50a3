package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/productlabel/productlabel-server/internal/domain"
)

func TestLabelCatalog_CacheKey(t *testing.T) {
	c := NewLabelCatalog(&fakeLabelSource{}, newMemoryCache(), "", discardLogger())
	assert.Equal(t, "productlabel_frontend_3", c.CacheKey(3))

	c = NewLabelCatalog(&fakeLabelSource{}, newMemoryCache(), "smile_productlabel_frontend", discardLogger())
	assert.Equal(t, "smile_productlabel_frontend_0", c.CacheKey(0))
}

func TestLabelCatalog_MissThenHit(t *testing.T) {
	source := &fakeLabelSource{labels: []*domain.Label{labelL1()}}
	mc := newMemoryCache()
	c := NewLabelCatalog(source, mc, "", discardLogger())
	ctx := context.Background()

	first, err := c.GetActiveLabels(ctx, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, source.calls)
	assert.Contains(t, mc.tags[CacheTag], "productlabel_frontend_1")

	second, err := c.GetActiveLabels(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.Equal(t, domain.NewDisplaySet(domain.DisplayProduct), second[0].DisplayOn)

	// Other stores have their own snapshot.
	_, err = c.GetActiveLabels(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestLabelCatalog_SnapshotFormat(t *testing.T) {
	l := labelL1()
	l.DisplayOn = domain.NewDisplaySet(domain.DisplayProduct, domain.DisplayListing)
	mc := newMemoryCache()
	c := NewLabelCatalog(&fakeLabelSource{labels: []*domain.Label{l}}, mc, "", discardLogger())

	_, err := c.GetActiveLabels(context.Background(), 0)
	require.NoError(t, err)
	assert.Contains(t, string(mc.entries["productlabel_frontend_0"]), `"display_on":"listing,product"`)
	assert.Contains(t, string(mc.entries["productlabel_frontend_0"]), `"position_product_view":"top-left"`)
}

func TestLabelCatalog_EmptyStore(t *testing.T) {
	source := &fakeLabelSource{}
	mc := newMemoryCache()
	c := NewLabelCatalog(source, mc, "", discardLogger())
	ctx := context.Background()

	labels, err := c.GetActiveLabels(ctx, 5)
	require.NoError(t, err)
	assert.NotNil(t, labels)
	assert.Empty(t, labels)
	assert.Equal(t, "[]", string(mc.entries["productlabel_frontend_5"]))

	labels, err = c.GetActiveLabels(ctx, 5)
	require.NoError(t, err)
	assert.NotNil(t, labels)
	assert.Equal(t, 1, source.calls)
}

func TestLabelCatalog_UndecodableSnapshotIsRebuilt(t *testing.T) {
	source := &fakeLabelSource{labels: []*domain.Label{labelL1()}}
	mc := newMemoryCache()
	mc.entries["productlabel_frontend_1"] = []byte("{not json")
	c := NewLabelCatalog(source, mc, "", discardLogger())

	labels, err := c.GetActiveLabels(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, 1, source.calls)
	assert.NotEqual(t, "{not json", string(mc.entries["productlabel_frontend_1"]))
}

func TestLabelCatalog_CacheFailuresDegrade(t *testing.T) {
	source := &fakeLabelSource{labels: []*domain.Label{labelL1()}}
	mc := newMemoryCache()
	mc.loadErr = errors.New("connection refused")
	mc.saveErr = errors.New("connection refused")
	c := NewLabelCatalog(source, mc, "", discardLogger())

	labels, err := c.GetActiveLabels(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 1, mc.saves)
}

func TestLabelCatalog_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("disk I/O error")
	c := NewLabelCatalog(&fakeLabelSource{err: boom}, newMemoryCache(), "", discardLogger())

	_, err := c.GetActiveLabels(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
}

func TestLabelCatalog_FlushCache(t *testing.T) {
	source := &fakeLabelSource{labels: []*domain.Label{labelL1()}}
	c := NewLabelCatalog(source, newMemoryCache(), "", discardLogger())
	ctx := context.Background()

	for _, storeID := range []int64{0, 1, 2} {
		_, err := c.GetActiveLabels(ctx, storeID)
		require.NoError(t, err)
	}

	n, err := c.FlushCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = c.GetActiveLabels(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, source.calls)
}
