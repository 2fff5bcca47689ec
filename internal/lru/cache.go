package lru

import (
	"sync"
	"sync/atomic"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 16

// Cache is a thread-safe LRU cache holding at most Capacity entries.
//
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*node[K, V]
	order    list[K, V]
	capacity int
	onEvict  func(K, V)

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache holding at most capacity entries. onEvict, when not
// nil, is called for every entry that leaves the cache, whether evicted,
// replaced, deleted or cleared.
func New[K comparable, V any](capacity int, onEvict func(K, V)) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[K, V]{
		entries:  make(map[K]*node[K, V]),
		capacity: capacity,
		onEvict:  onEvict,
	}
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.order.moveToFront(n)
	c.hits.Add(1)
	return n.value, true
}

// Set stores value under key, replacing any previous value, and evicts the
// least recently used entries beyond capacity.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	out := c.set(key, value)
	c.mu.Unlock()
	c.evict(out)
}

// GetOrCreate returns the value for key, creating and storing it on a
// miss. create runs under the cache lock, so concurrent callers for the
// same key create it once. A create error is returned and nothing is
// stored.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	if n, ok := c.entries[key]; ok {
		c.order.moveToFront(n)
		c.hits.Add(1)
		c.mu.Unlock()
		return n.value, nil
	}
	c.misses.Add(1)
	value, err := create()
	if err != nil {
		c.mu.Unlock()
		var zero V
		return zero, err
	}
	out := c.set(key, value)
	c.mu.Unlock()
	c.evict(out)
	return value, nil
}

// Delete removes key. It reports whether the key was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	n, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
		c.order.unlink(n)
	}
	c.mu.Unlock()
	if ok {
		c.evict([]*node[K, V]{n})
	}
	return ok
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	out := make([]*node[K, V], 0, len(c.entries))
	for n := c.order.popBack(); n != nil; n = c.order.popBack() {
		out = append(out, n)
	}
	c.entries = make(map[K]*node[K, V])
	c.mu.Unlock()
	c.evict(out)
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the maximum number of entries.
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// Stats contains cache statistics.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Stats returns a snapshot of the cache statistics. Evictions counts only
// entries pushed out by capacity.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Len:       c.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// set stores value and returns the nodes that left the cache.
// Caller must hold c.mu.
func (c *Cache[K, V]) set(key K, value V) []*node[K, V] {
	var out []*node[K, V]
	if old, ok := c.entries[key]; ok {
		c.order.unlink(old)
		out = append(out, old)
	}
	n := &node[K, V]{key: key, value: value}
	c.entries[key] = n
	c.order.pushFront(n)

	for c.order.len > c.capacity {
		oldest := c.order.popBack()
		delete(c.entries, oldest.key)
		c.evictions.Add(1)
		out = append(out, oldest)
	}
	return out
}

// evict runs the callback for nodes that left the cache.
// Caller must not hold c.mu.
func (c *Cache[K, V]) evict(out []*node[K, V]) {
	if c.onEvict == nil {
		return
	}
	for _, n := range out {
		c.onEvict(n.key, n.value)
	}
}
