package geojson

import (
	"context"
	"fmt"

	"github.com/couchcryptid/dengue-dashboard/internal/domain"
	"github.com/couchcryptid/dengue-dashboard/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
)

const statesKey = "states"

// CachedSource wraps a GeometrySource with an in-memory LRU cache. Geometry
// never changes during a run, so entries do not expire.
type CachedSource struct {
	inner   domain.GeometrySource
	cache   *lru.Cache[string, []domain.Feature]
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator holding up to maxEntries collections.
func NewCachedSource(inner domain.GeometrySource, maxEntries int, metrics *observability.Metrics) (*CachedSource, error) {
	cache, err := lru.New[string, []domain.Feature](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create geometry cache: %w", err)
	}
	return &CachedSource{inner: inner, cache: cache, metrics: metrics}, nil
}

func (c *CachedSource) States(ctx context.Context) ([]domain.Feature, error) {
	return c.get(statesKey, func() ([]domain.Feature, error) {
		return c.inner.States(ctx)
	})
}

func (c *CachedSource) Municipalities(ctx context.Context, stateCode int) ([]domain.Feature, error) {
	return c.get(fmt.Sprintf("mun:%d", stateCode), func() ([]domain.Feature, error) {
		return c.inner.Municipalities(ctx, stateCode)
	})
}

// Len returns the number of cached collections.
func (c *CachedSource) Len() int {
	return c.cache.Len()
}

func (c *CachedSource) get(key string, load func() ([]domain.Feature, error)) ([]domain.Feature, error) {
	if features, ok := c.cache.Get(key); ok {
		c.metrics.GeometryCache.WithLabelValues("hit").Inc()
		return features, nil
	}
	c.metrics.GeometryCache.WithLabelValues("miss").Inc()

	features, err := load()
	if err != nil {
		return nil, err
	}
	// Empty collections are not cached so a bad upstream response can be retried.
	if len(features) > 0 {
		c.cache.Add(key, features)
	}
	return features, nil
}
