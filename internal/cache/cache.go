// Package cache provides a process-local TTL store. Every external source
// owns its own instance so refresh policies never cross-contaminate.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	timestamp time.Time
}

// TTL is an in-memory map with per-store expiry. Expired entries are
// invisible to Get but retained for Peek, so stale-serve fallbacks keep
// working after the TTL elapses; Set overwrites them in place.
type TTL[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time

	hits   int64
	misses int64
}

// NewTTL creates a store whose entries expire after ttl.
func NewTTL[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.timestamp) > c.ttl {
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		var zero V
		return zero, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return e.value, true
}

// Peek returns the cached value for key even when expired, with its age.
// Used for stale-serve fallbacks.
func (c *TTL[V]) Peek(key string) (V, time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, 0, false
	}
	return e.value, c.now().Sub(e.timestamp), true
}

// Set stores value under key with a fresh timestamp.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, timestamp: c.now()}
}

// Delete removes key from the store.
func (c *TTL[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, expired or not.
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cumulative hit/miss counters.
func (c *TTL[V]) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// SetClock overrides the time source. Test hook.
func (c *TTL[V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
