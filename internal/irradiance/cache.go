package irradiance

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type cacheEntry struct {
	value     float64
	expiresAt time.Time
}

// Cached memoizes successful lookups of another Source for a TTL. Every
// change of site input reruns all twelve months, so repeated coordinates are
// common.
type Cached struct {
	Source Source

	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewCached(src Source, ttl time.Duration) *Cached {
	return &Cached{
		Source: src,
		store:  make(map[string]cacheEntry),
		ttl:    ttl,
		now:    time.Now,
	}
}

func cacheKey(lat, lon float64, date time.Time) string {
	return fmt.Sprintf("%.4f:%.4f:%s", lat, lon, date.Format("2006-01-02"))
}

func (c *Cached) DailyHorizontal(ctx context.Context, lat, lon float64, date time.Time) (float64, error) {
	key := cacheKey(lat, lon, date)

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if ok && c.now().Before(e.expiresAt) {
		return e.value, nil
	}

	v, err := c.Source.DailyHorizontal(ctx, lat, lon, date)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.store[key] = cacheEntry{value: v, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return v, nil
}

// Purge drops expired entries.
func (c *Cached) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.store {
		if !now.Before(e.expiresAt) {
			delete(c.store, k)
		}
	}
}

func (c *Cached) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
