/*

This file contains the read-through cache in front of the collection
pipeline. It replaces ad-hoc global cache state with an explicit component:
the clock is injected, a single fetch populates the cache under one lock so
concurrent readers observe either the prior value or the new one, and a
failed refresh serves the stale value instead of propagating the failure
whenever a prior value exists.

*/

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/solyield/ysa/internal/logger"
	"github.com/solyield/ysa/internal/types"
)

var cacheLogger = logger.GetForComponent("opportunity_cache")

// FetchFunc produces a fresh collection result. It is invoked at most once
// per expiry, never concurrently.
type FetchFunc func(ctx context.Context) (types.CollectionResult, error)

// Cache is a TTL read-through cache over the collection pipeline.
type Cache struct {
	mu    sync.Mutex
	fetch FetchFunc
	ttl   time.Duration
	clock func() time.Time

	current     *types.CollectionResult
	refreshedAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock injects the time source. Tests use this to control expiry.
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) { c.clock = clock }
}

// New creates a cache with the given fetch function and freshness window.
func New(fetch FetchFunc, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		fetch: fetch,
		ttl:   ttl,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached collection result, refreshing it when the freshness
// window has elapsed. The stale flag is true when a refresh failed and a
// prior value is being served instead. An error is returned only when no
// value has ever been fetched successfully.
func (c *Cache) Get(ctx context.Context) (types.CollectionResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	if c.current != nil && now.Sub(c.refreshedAt) < c.ttl {
		cacheLogger.Debug().
			Time("refreshedAt", c.refreshedAt).
			Msg("Serving cached opportunity data")
		return *c.current, false, nil
	}

	result, err := c.fetch(ctx)
	if err != nil {
		if c.current != nil {
			cacheLogger.Warn().
				Err(err).
				Time("refreshedAt", c.refreshedAt).
				Msg("Refresh failed, serving stale opportunity data")
			return *c.current, true, nil
		}
		cacheLogger.Error().Err(err).Msg("Refresh failed with no prior data to serve")
		return types.CollectionResult{}, false, err
	}

	c.current = &result
	c.refreshedAt = now

	cacheLogger.Info().
		Int("opportunities", len(result.Opportunities)).
		Time("refreshedAt", now).
		Msg("Opportunity cache refreshed")

	return result, false, nil
}

// LastRefreshed reports when the cache was last populated, for health
// reporting. The zero time means never.
func (c *Cache) LastRefreshed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshedAt
}
