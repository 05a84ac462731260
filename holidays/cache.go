package holidays

import (
	"context"
	"sync"
	"time"

	"github.com/warp/rest-planner/generic"
	"go.uber.org/zap"
)

const defaultCacheTTL = 24 * time.Hour

// Cache memoizes a provider per region and year. The owner decides its
// lifetime and calls Invalidate when the underlying data changes (for
// example after a custom holiday is saved). Errors are never cached.
type Cache struct {
	provider Provider
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
}

type cacheKey struct {
	country     string
	subdivision string
	year        int
}

type cacheEntry struct {
	set       generic.HolidaySet
	fetchedAt time.Time
}

func NewCache(provider Provider, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		provider: provider,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		entries:  make(map[cacheKey]cacheEntry),
	}
}

var _ Provider = (*Cache)(nil)

func (c *Cache) HolidaysFor(ctx context.Context, countryCode, subdivision string, year int) (generic.HolidaySet, error) {
	key := cacheKey{country: countryCode, subdivision: subdivision, year: year}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.set, nil
	}

	set, err := c.provider.HolidaysFor(ctx, countryCode, subdivision, year)
	if err != nil {
		return generic.HolidaySet{}, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{set: set, fetchedAt: c.now()}
	c.mu.Unlock()

	c.logger.Debug("Cached holiday set",
		zap.String("country", countryCode),
		zap.String("subdivision", subdivision),
		zap.Int("year", year),
		zap.Int("holidays", set.Len()))
	return set, nil
}

// Invalidate drops every cached entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[cacheKey]cacheEntry)
	c.mu.Unlock()
}

func (c *Cache) Regions() []Region {
	return Regions(c.provider)
}
