package cache

import (
	"container/list"
	"errors"
	"sync"
)

// DefaultCapacity is the default maximum number of cached entries.
const DefaultCapacity = 1024

// ErrInvalidCapacity is returned by New when capacity is not positive.
var ErrInvalidCapacity = errors.New("cache capacity must be > 0")

// EvictFunc is invoked after an entry is evicted to make room for a new one.
// It is called without the cache lock held, so it may call back into the
// cache.
type EvictFunc[V any] func(key string, value V)

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Entries   int
	Capacity  int
}

// LRU is a fixed-capacity, thread-safe least recently used cache keyed by
// short code.
//
// Implementation details:
//   - container/list keeps recency order, front = most recently used
//   - a map gives O(1) lookup of list elements
//   - one mutex guards both, since Get reorders the list
//
// There is no TTL and no frequency weighting. An entry only leaves the
// cache through eviction or Invalidate.
type LRU[V any] struct {
	mu        sync.Mutex
	capacity  int
	items     map[string]*list.Element
	evictList *list.List
	onEvict   EvictFunc[V]

	hits      uint64
	misses    uint64
	evictions uint64
}

type entry[V any] struct {
	key   string
	value V
}

// Option configures an LRU.
type Option[V any] func(*LRU[V])

// WithEvictCallback registers fn to be called for every capacity eviction.
// Invalidate does not trigger it.
func WithEvictCallback[V any](fn EvictFunc[V]) Option[V] {
	return func(c *LRU[V]) {
		c.onEvict = fn
	}
}

// New creates an empty cache holding at most capacity entries.
//
// Example:
//
//	urls, err := cache.New[string](cache.DefaultCapacity)
func New[V any](capacity int, opts ...Option[V]) (*LRU[V], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	c := &LRU[V]{
		capacity:  capacity,
		items:     make(map[string]*list.Element, capacity),
		evictList: list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}

	c.hits++
	c.evictList.MoveToFront(elem)
	return elem.Value.(*entry[V]).value, true
}

// Put inserts or refreshes key. Inserting a new key into a full cache
// evicts exactly one entry, the least recently used.
func (c *LRU[V]) Put(key string, value V) {
	evicted, ok := c.put(key, value)
	if ok && c.onEvict != nil {
		c.onEvict(evicted.key, evicted.value)
	}
}

func (c *LRU[V]) put(key string, value V) (*entry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.evictList.MoveToFront(elem)
		elem.Value.(*entry[V]).value = value
		return nil, false
	}

	c.items[key] = c.evictList.PushFront(&entry[V]{key: key, value: value})

	if c.evictList.Len() > c.capacity {
		return c.removeOldest(), true
	}
	return nil, false
}

// Invalidate removes key if present.
func (c *LRU[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.evictList.Remove(elem)
		delete(c.items, key)
	}
}

// Len returns the current number of entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Capacity returns the maximum number of entries.
func (c *LRU[V]) Capacity() int {
	return c.capacity
}

// Stats returns counters accumulated since creation.
func (c *LRU[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Entries:   c.evictList.Len(),
		Capacity:  c.capacity,
	}
}

// removeOldest drops the back of the list. Caller must hold c.mu.
func (c *LRU[V]) removeOldest() *entry[V] {
	elem := c.evictList.Back()
	c.evictList.Remove(elem)

	ent := elem.Value.(*entry[V])
	delete(c.items, ent.key)
	c.evictions++
	return ent
}
