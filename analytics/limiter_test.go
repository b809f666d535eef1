package analytics

import (
	"testing"
	"time"
)

func TestRateLimiterBlocksAfterMax(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	key := "203.0.113.5"

	if !rl.allow(key) || !rl.allow(key) {
		t.Fatal("expected first two requests to be allowed")
	}
	if rl.allow(key) {
		t.Fatal("expected third request to be blocked")
	}
	if !rl.allow("203.0.113.6") {
		t.Fatal("expected other key to be unaffected")
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := newRateLimiter(1, 100*time.Millisecond)
	key := "203.0.113.7"

	if !rl.allow(key) {
		t.Fatal("expected first request to be allowed")
	}
	if rl.allow(key) {
		t.Fatal("expected second request to be blocked")
	}
	time.Sleep(150 * time.Millisecond)
	if !rl.allow(key) {
		t.Fatal("expected request after window to be allowed")
	}
}
