package analytics

import "sync"

// StatsResponse is the JSON payload of the admin stats endpoint, and the
// value memoized per tenant between recompute runs.
type StatsResponse struct {
	Stats      DerivedAnalytics `json:"stats"`
	Dimensions Dimensions       `json:"dimensions"`
}

// statsCache memoizes derived analytics by tenant key. No TTL: entries live
// until Invalidate, which the recorder calls after every persisted view. The
// cache object is explicit and owned by the handler, not a package global.
type statsCache struct {
	mu      sync.RWMutex
	entries map[string]StatsResponse
}

func newStatsCache() *statsCache {
	return &statsCache{entries: make(map[string]StatsResponse)}
}

func (c *statsCache) get(key string) (StatsResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *statsCache) set(key string, v StatsResponse) {
	c.mu.Lock()
	c.entries[key] = v
	c.mu.Unlock()
}

// Invalidate drops one tenant's memoized result.
func (c *statsCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
