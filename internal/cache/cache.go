// internal/cache/cache.go
package cache

import (
	"sync"
	"time"
)

// Clock abstracts time.Now so tests can drive expiry deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock used outside of tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a small in-memory key/value cache with per-entry expiry. It is safe
// for concurrent use. Expired entries are overwritten on Put and skipped on
// Get; there is no background eviction, which is fine for the handful of keys
// this service caches.
type TTL[V any] struct {
	mu      sync.Mutex
	clock   Clock
	entries map[string]entry[V]
}

// NewTTL creates an empty cache using the given clock.
func NewTTL[V any](clock Clock) *TTL[V] {
	return &TTL[V]{
		clock:   clock,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the cached value for key and whether it was present and fresh.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !c.clock.Now().Before(e.expiresAt) {
		var zero V
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Put stores value under key for the given ttl.
func (c *TTL[V]) Put(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: c.clock.Now().Add(ttl),
	}
}
