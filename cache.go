package playcore

import (
	"sync"
	"time"
)

// responseCache memoizes successful GET results for a fixed TTL. Opt-in via
// WithResponseCache; useful for read-mostly endpoints like remote config and
// leaderboard pages.
type responseCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	store map[string]cacheEntry
}

type cacheEntry struct {
	result    Result
	expiresAt time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:   ttl,
		store: make(map[string]cacheEntry),
	}
}

func (c *responseCache) get(key string) (Result, bool) {
	c.mu.RLock()
	entry, exists := c.store[key]
	c.mu.RUnlock()

	if !exists {
		return Result{}, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.store, key)
		c.mu.Unlock()
		return Result{}, false
	}
	return entry.result, true
}

func (c *responseCache) set(key string, res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = cacheEntry{result: res, expiresAt: time.Now().Add(c.ttl)}
}

func (c *responseCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
}

func (c *responseCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]cacheEntry)
}
