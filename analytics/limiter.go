package analytics

import (
	"sync"
	"time"
)

// rateLimiter is a per-key sliding-window rate limiter for the beacon
// endpoint. Disabled by default; see NewHandler. Not part of the dedup
// contract.
type rateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	max    int
	window time.Duration
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		hits:   make(map[string][]time.Time),
		max:    max,
		window: window,
	}
	go rl.sweep()
	return rl
}

// prune drops hits older than the window for one key and returns what survives.
// Caller holds the lock.
func (rl *rateLimiter) prune(key string, cutoff time.Time) []time.Time {
	kept := rl.hits[key][:0]
	for _, t := range rl.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(rl.hits, key)
		return nil
	}
	rl.hits[key] = kept
	return kept
}

// allow checks if key has not exceeded the limit and records the request.
func (rl *rateLimiter) allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	kept := rl.prune(key, now.Add(-rl.window))
	if len(kept) >= rl.max {
		return false
	}
	rl.hits[key] = append(kept, now)
	return true
}

// sweep periodically prunes idle keys so the map does not grow unbounded.
func (rl *rateLimiter) sweep() {
	ticker := time.NewTicker(rl.window)
	for range ticker.C {
		cutoff := time.Now().Add(-rl.window)
		rl.mu.Lock()
		for key := range rl.hits {
			rl.prune(key, cutoff)
		}
		rl.mu.Unlock()
	}
}
