// Package cache provides the bounded classification cache shared by all
// callers of the evaluation engine. Keys are exact input text: case-sensitive
// and unnormalized, so "Hello" and "hello " are distinct entries. The cache is
// process-wide with no per-caller isolation — a deliberate trade of privacy
// for hit rate.
package cache

import "sync"

// DefaultCapacity is the default bound on cached classifications.
const DefaultCapacity = 1000

// Cache is a bounded key→value store with insertion-order eviction. When the
// entry count exceeds capacity, the least-recently-inserted entry is evicted.
// Hits do not refresh an entry's position: this is a FIFO bound, not an LRU,
// and the distinction decides which stale entries survive.
type Cache[V any] struct {
	mu       sync.Mutex
	entries  map[string]V
	order    []string // insertion order, oldest first
	capacity int
}

// New creates a cache with the given capacity. Non-positive capacities fall
// back to DefaultCapacity.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[V]{
		entries:  make(map[string]V, capacity),
		capacity: capacity,
	}
}

// GetOrCompute returns the cached value for key, or invokes compute to
// produce, store, and return it. The bool reports whether this was a hit.
//
// compute runs outside the lock so a slow computation never serializes
// lookups for unrelated keys. The cost of that choice: concurrent misses on
// the same key may each invoke compute, and the last writer's value is kept.
// There is deliberately no single-flight guarantee; duplicate upstream calls
// under concurrent identical requests are accepted behavior.
func (c *Cache[V]) GetOrCompute(key string, compute func(string) V) (V, bool) {
	c.mu.Lock()
	if v, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return v, true
	}
	c.mu.Unlock()

	v := compute(key)

	// Insert + evict under one critical section so the map and the eviction
	// queue can never disagree.
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		// A concurrent compute for the same key won the race. Overwrite the
		// value but keep the original queue position.
		c.entries[key] = v
		return v, false
	}
	c.entries[key] = v
	c.order = append(c.order, key)
	if len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	return v, false
}

// Get returns the cached value for key without computing on a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Len returns the current number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
