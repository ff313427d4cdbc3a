package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCacheEntry wraps the cached data with its expiry
type LRUCacheEntry[V any] struct {
	Data      V
	ExpiresAt time.Time
}

// LRUCache is a size-bounded cache whose entries also expire after a fixed TTL.
type LRUCache[K comparable, V any] struct {
	lru    *lru.Cache[K, *LRUCacheEntry[V]]
	ttl    time.Duration
	clock  Clock
	mu     sync.RWMutex
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewLRUCache[K comparable, V any](size int, ttl time.Duration) (*LRUCache[K, V], error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}

	lruCache, err := lru.New[K, *LRUCacheEntry[V]](size)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}

	return &LRUCache[K, V]{
		lru:   lruCache,
		ttl:   ttl,
		clock: SystemClock(),
	}, nil
}

// WithClock swaps the time source; intended for tests.
func (c *LRUCache[K, V]) WithClock(clock Clock) *LRUCache[K, V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock = clock
	return c
}

func (c *LRUCache[K, V]) Add(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, &LRUCacheEntry[V]{
		Data:      value,
		ExpiresAt: c.clock.Now().Add(c.ttl),
	})
}

func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return zero, false
	}

	if c.clock.Now().After(entry.ExpiresAt) {
		// Entry expired, remove it
		c.lru.Remove(key)
		c.misses.Add(1)
		return zero, false
	}

	c.hits.Add(1)
	return entry.Data, true
}

func (c *LRUCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lru.Len()
}

// GetCacheStats returns statistics about cache hits and misses
func (c *LRUCache[K, V]) GetCacheStats() map[string]uint64 {
	return map[string]uint64{
		"lru_hits":   c.hits.Load(),
		"lru_misses": c.misses.Load(),
	}
}

// Clear removes all entries from the LRU cache
func (c *LRUCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
