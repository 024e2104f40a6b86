package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"grocery-pricing-engine/internal/pkg/common"
)

// Hit is one cache lookup result handed back to the orchestrator.
type Hit struct {
	Name     string
	Option   common.SanitizedPriceOption
	CachedAt time.Time
	Stale    bool
}

// PriceCache layers freshness tiers over a Store. Entries younger than the
// TTL are fresh; past the TTL but inside the stale window they are servable
// only through GetStale as an emergency fallback.
type PriceCache struct {
	store       Store
	ttl         time.Duration
	staleWindow time.Duration

	mu    sync.Mutex
	stats struct {
		hits      int64
		staleHits int64
		misses    int64
		writes    int64
	}

	// test seam; defaults to time.Now
	now func() time.Time
}

// New creates a PriceCache over the given store.
func New(store Store, ttl, staleWindow time.Duration) *PriceCache {
	if staleWindow < ttl {
		staleWindow = ttl
	}
	return &PriceCache{
		store:       store,
		ttl:         ttl,
		staleWindow: staleWindow,
		now:         time.Now,
	}
}

// GetMany looks up fresh entries for the named ingredients. It returns fresh
// hits keyed by original ingredient name and the list of names that still
// need an upstream call. Stale entries count as missing here; they surface
// only through GetStale.
func (c *PriceCache) GetMany(ctx context.Context, names []string, location string) (map[string]Hit, []string) {
	locationKey := LocationKey(location)
	hits := make(map[string]Hit)
	var missing []string

	for _, name := range names {
		entry, err := c.store.Get(ctx, IngredientKey(name), locationKey)
		if err != nil {
			common.LogWarn("cache read failed",
				zap.String("ingredient", name),
				zap.Error(err),
			)
			missing = append(missing, name)
			continue
		}
		if entry == nil || !c.now().Before(entry.ExpiresAt) {
			c.count(func() { c.stats.misses++ })
			common.LogCacheMiss("price", IngredientKey(name))
			missing = append(missing, name)
			continue
		}

		c.count(func() { c.stats.hits++ })
		common.LogCacheHit("price", IngredientKey(name))
		hits[name] = Hit{
			Name:     name,
			Option:   entry.Option,
			CachedAt: entry.CachedAt,
		}
	}

	return hits, missing
}

// GetStale returns a stale-but-servable entry: expired, but cached within
// the stale window. Used only when the live upstream call has also failed.
func (c *PriceCache) GetStale(ctx context.Context, name, location string) (*Hit, bool) {
	entry, err := c.store.Get(ctx, IngredientKey(name), LocationKey(location))
	if err != nil || entry == nil {
		return nil, false
	}

	now := c.now()
	if now.Before(entry.ExpiresAt) || now.After(entry.CachedAt.Add(c.staleWindow)) {
		return nil, false
	}

	c.count(func() { c.stats.staleHits++ })
	common.LogInfo("serving stale cache entry",
		zap.String("ingredient", name),
		zap.Time("cached_at", entry.CachedAt),
	)
	return &Hit{Name: name, Option: entry.Option, CachedAt: entry.CachedAt, Stale: true}, true
}

// PutMany upserts resolved options for a location. A non-positive ttl uses
// the cache default. Write failures are logged, not returned: a cache write
// must never fail the pipeline.
func (c *PriceCache) PutMany(ctx context.Context, location string, options map[string]common.SanitizedPriceOption, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	locationKey := LocationKey(location)
	now := c.now()

	for name, option := range options {
		entry := Entry{
			IngredientKey: IngredientKey(name),
			LocationKey:   locationKey,
			Option:        option,
			CachedAt:      now,
			ExpiresAt:     now.Add(ttl),
		}
		if err := c.store.Upsert(ctx, entry); err != nil {
			common.LogWarn("cache write failed",
				zap.String("ingredient", name),
				zap.Error(err),
			)
			continue
		}
		c.count(func() { c.stats.writes++ })
	}
}

// CleanupExpired purges entries older than the stale window.
func (c *PriceCache) CleanupExpired(ctx context.Context) (int, error) {
	purged, err := c.store.DeleteBefore(ctx, c.now().Add(-c.staleWindow))
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		common.LogInfo("purged expired cache entries", zap.Int("count", purged))
	}
	return purged, nil
}

// StartCleanup runs CleanupExpired on an interval until ctx is done.
func (c *PriceCache) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.CleanupExpired(ctx); err != nil {
				common.LogWarn("cache cleanup failed", zap.Error(err))
			}
		}
	}
}

// Stats reports cache counters.
func (c *PriceCache) Stats() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.stats.hits + c.stats.misses
	hitRatio := 0.0
	if total > 0 {
		hitRatio = float64(c.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"hits":         c.stats.hits,
		"stale_hits":   c.stats.staleHits,
		"misses":       c.stats.misses,
		"writes":       c.stats.writes,
		"hit_ratio":    hitRatio,
		"ttl":          c.ttl.String(),
		"stale_window": c.staleWindow.String(),
	}
}

// Close closes the backing store.
func (c *PriceCache) Close() error {
	return c.store.Close()
}

func (c *PriceCache) count(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}
