package geojson

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/dengue-dashboard/internal/domain"
	"github.com/couchcryptid/dengue-dashboard/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	stateCalls int
	munCalls   map[int]int
	features   []domain.Feature
	err        error
}

func (f *fakeSource) States(_ context.Context) ([]domain.Feature, error) {
	f.stateCalls++
	return f.features, f.err
}

func (f *fakeSource) Municipalities(_ context.Context, code int) ([]domain.Feature, error) {
	if f.munCalls == nil {
		f.munCalls = map[int]int{}
	}
	f.munCalls[code]++
	return f.features, f.err
}

func oneFeature() []domain.Feature {
	return []domain.Feature{{ID: "1", Properties: map[string]any{"id": "11"}}}
}

func TestCachedSource_HitAfterMiss(t *testing.T) {
	inner := &fakeSource{features: oneFeature()}
	metrics := observability.NewMetricsForTesting()
	c, err := NewCachedSource(inner, 4, metrics)
	require.NoError(t, err)

	for range 3 {
		got, err := c.States(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 1, inner.stateCalls)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.GeometryCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeometryCache.WithLabelValues("miss")), 0)
}

func TestCachedSource_PerStateKeys(t *testing.T) {
	inner := &fakeSource{features: oneFeature()}
	c, err := NewCachedSource(inner, 4, observability.NewMetricsForTesting())
	require.NoError(t, err)

	_, _ = c.Municipalities(context.Background(), 51)
	_, _ = c.Municipalities(context.Background(), 35)
	_, _ = c.Municipalities(context.Background(), 51)

	assert.Equal(t, map[int]int{51: 1, 35: 1}, inner.munCalls)
	assert.Equal(t, 2, c.Len())
}

func TestCachedSource_Eviction(t *testing.T) {
	inner := &fakeSource{features: oneFeature()}
	c, err := NewCachedSource(inner, 2, observability.NewMetricsForTesting())
	require.NoError(t, err)

	ctx := context.Background()
	_, _ = c.Municipalities(ctx, 11)
	_, _ = c.Municipalities(ctx, 12)
	_, _ = c.Municipalities(ctx, 11) // 11 becomes most recent
	_, _ = c.Municipalities(ctx, 13) // evicts 12
	_, _ = c.Municipalities(ctx, 12)

	assert.Equal(t, 2, inner.munCalls[12])
	assert.Equal(t, 1, inner.munCalls[11])
	assert.Equal(t, 2, c.Len())
}

func TestCachedSource_ErrorsAndEmptyNotCached(t *testing.T) {
	inner := &fakeSource{err: errors.New("boom")}
	c, err := NewCachedSource(inner, 4, observability.NewMetricsForTesting())
	require.NoError(t, err)

	_, err = c.States(context.Background())
	require.Error(t, err)
	inner.err = nil
	_, err = c.States(context.Background())
	require.NoError(t, err)
	_, err = c.States(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, inner.stateCalls)
	assert.Zero(t, c.Len())
}

func TestNewCachedSource_InvalidSize(t *testing.T) {
	_, err := NewCachedSource(&fakeSource{}, 0, observability.NewMetricsForTesting())
	require.Error(t, err)
}
