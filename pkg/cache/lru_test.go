package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func newTestCache(t *testing.T, capacity int, opts ...Option[string]) *LRU[string] {
	t.Helper()
	c, err := New[string](capacity, opts...)
	if err != nil {
		t.Fatalf("New(%d) failed: %v", capacity, err)
	}
	return c
}

func TestNew_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		if _, err := New[string](capacity); !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("capacity %d: expected ErrInvalidCapacity, got %v", capacity, err)
		}
	}
}

func TestLRU_PutAndGet(t *testing.T) {
	c := newTestCache(t, 10)

	c.Put("abc1234", "https://example.com")

	if val, ok := c.Get("abc1234"); !ok || val != "https://example.com" {
		t.Errorf("Expected (https://example.com, true), got (%q, %v)", val, ok)
	}

	if val, ok := c.Get("missing"); ok || val != "" {
		t.Errorf("Expected miss, got (%q, %v)", val, ok)
	}
}

func TestLRU_UpdateRefreshesValue(t *testing.T) {
	c := newTestCache(t, 10)

	c.Put("k", "v1")
	c.Put("k", "v2")

	if val, _ := c.Get("k"); val != "v2" {
		t.Errorf("Expected v2, got %q", val)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}
}

func TestLRU_GetRefreshesRecency(t *testing.T) {
	c := newTestCache(t, 2)

	c.Put("a", "1")
	c.Put("b", "2")
	c.Get("a")
	c.Put("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("Expected b to be evicted")
	}
	if val, ok := c.Get("a"); !ok || val != "1" {
		t.Errorf("Expected a=1, got (%q, %v)", val, ok)
	}
	if val, ok := c.Get("c"); !ok || val != "3" {
		t.Errorf("Expected c=3, got (%q, %v)", val, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", c.Len())
	}
}

func TestLRU_PutRefreshesRecency(t *testing.T) {
	c := newTestCache(t, 2)

	c.Put("a", "1")
	c.Put("b", "2")
	c.Put("a", "1b")
	c.Put("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("Expected b to be evicted")
	}
	if val, _ := c.Get("a"); val != "1b" {
		t.Errorf("Expected a=1b, got %q", val)
	}
}

func TestLRU_EvictsExactlyOne(t *testing.T) {
	const capacity = 5
	var evicted []string
	c := newTestCache(t, capacity, WithEvictCallback[string](func(key, _ string) {
		evicted = append(evicted, key)
	}))

	for i := 0; i <= capacity; i++ {
		c.Put(fmt.Sprintf("k%d", i), "v")
	}

	if len(evicted) != 1 || evicted[0] != "k0" {
		t.Fatalf("Expected only k0 evicted, got %v", evicted)
	}
	if c.Len() != capacity {
		t.Errorf("Expected %d entries, got %d", capacity, c.Len())
	}
}

func TestLRU_Invalidate(t *testing.T) {
	evictions := 0
	c := newTestCache(t, 3, WithEvictCallback[string](func(string, string) { evictions++ }))

	c.Put("a", "1")
	c.Invalidate("a")
	c.Invalidate("never-present")

	if _, ok := c.Get("a"); ok {
		t.Error("Expected a to be invalidated")
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d", c.Len())
	}
	if evictions != 0 {
		t.Errorf("Expected invalidate not to count as eviction, got %d", evictions)
	}
}

func TestLRU_EvictCallbackMayReenter(t *testing.T) {
	var c *LRU[string]
	c = newTestCache(t, 1, WithEvictCallback[string](func(key, _ string) {
		// Would deadlock if invoked with the lock held.
		_ = c.Len()
	}))

	c.Put("a", "1")
	c.Put("b", "2")
}

func TestLRU_Stats(t *testing.T) {
	c := newTestCache(t, 1)

	c.Put("a", "1")
	c.Get("a")
	c.Get("b")
	c.Put("b", "2")

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Evictions != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if stats.Entries != 1 || stats.Capacity != 1 {
		t.Errorf("Unexpected size in stats: %+v", stats)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	c := newTestCache(t, 64)

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", (g*31+i)%128)
				c.Put(key, key)
				if val, ok := c.Get(key); ok && val != key {
					t.Errorf("Expected %q, got %q", key, val)
				}
				if i%7 == 0 {
					c.Invalidate(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 64 {
		t.Errorf("Cache exceeded capacity: %d", c.Len())
	}
}

func TestLRU_StructValues(t *testing.T) {
	type link struct {
		target    string
		expiresAt int64
	}
	c, err := New[link](2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	c.Put("a", link{target: "https://example.com", expiresAt: 42})

	if val, ok := c.Get("a"); !ok || val.target != "https://example.com" || val.expiresAt != 42 {
		t.Errorf("Expected stored struct, got (%+v, %v)", val, ok)
	}
	if val, ok := c.Get("b"); ok || val != (link{}) {
		t.Errorf("Expected zero value on miss, got (%+v, %v)", val, ok)
	}
}

func BenchmarkLRU_Get(b *testing.B) {
	c, _ := New[string](DefaultCapacity)
	for i := 0; i < DefaultCapacity; i++ {
		c.Put(fmt.Sprintf("k%d", i), "v")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("k42")
	}
}
