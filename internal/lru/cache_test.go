package lru

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
)

// evictLog records eviction callbacks.
type evictLog struct {
	mu   sync.Mutex
	keys []string
}

func (l *evictLog) record(k string, _ int) {
	l.mu.Lock()
	l.keys = append(l.keys, k)
	l.mu.Unlock()
}

func (l *evictLog) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fmt.Sprint(l.keys)
}

func TestNew(t *testing.T) {
	c := New[string, int](100, nil)
	if c.Capacity() != 100 {
		t.Errorf("expected capacity 100, got %d", c.Capacity())
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
	if d := New[string, int](0, nil); d.Capacity() != DefaultCapacity {
		t.Errorf("expected default capacity %d, got %d", DefaultCapacity, d.Capacity())
	}
}

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](10, nil)
	c.Set("key1", 42)

	val, ok := c.Get("key1")
	if !ok || val != 42 {
		t.Errorf("Get(key1) = %d, %v, want 42, true", val, ok)
	}
	if _, ok := c.Get("nonexistent"); ok {
		t.Error("expected nonexistent key to not exist")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	var log evictLog
	c := New[string, int](3, log.record)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Get("a")
	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("b was the least recently used entry and should be gone")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
	if got := log.String(); got != "[b]" {
		t.Errorf("evicted %s, want [b]", got)
	}
	if s := c.Stats(); s.Evictions != 1 || s.Len != 3 {
		t.Errorf("Stats() = %+v, want 1 eviction and 3 entries", s)
	}
}

func TestCacheReplaceCallsEvict(t *testing.T) {
	var log evictLog
	c := New[string, int](3, log.record)
	c.Set("a", 1)
	c.Set("a", 2)

	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) = %d, want 2", v)
	}
	if got := log.String(); got != "[a]" {
		t.Errorf("replaced value not released: %s", got)
	}
	if c.Stats().Evictions != 0 {
		t.Error("a replacement is not a capacity eviction")
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[string, int](10, nil)
	calls := 0
	create := func(v int) func() (int, error) {
		return func() (int, error) {
			calls++
			return v, nil
		}
	}

	if v, err := c.GetOrCreate("k", create(100)); err != nil || v != 100 {
		t.Fatalf("GetOrCreate = %d, %v, want 100, nil", v, err)
	}
	if v, _ := c.GetOrCreate("k", create(200)); v != 100 {
		t.Errorf("expected cached 100, got %d", v)
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	errBoom := errors.New("boom")
	if _, err := c.GetOrCreate("bad", func() (int, error) { return 0, errBoom }); !errors.Is(err, errBoom) {
		t.Errorf("expected create error, got %v", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed create must not be cached")
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 3 {
		t.Errorf("Stats() = %+v, want 1 hit and 3 misses", s)
	}
}

func TestCacheDelete(t *testing.T) {
	var log evictLog
	c := New[string, int](10, log.record)
	c.Set("key1", 42)

	if !c.Delete("key1") {
		t.Error("expected Delete to return true for existing key")
	}
	if _, ok := c.Get("key1"); ok {
		t.Error("expected key1 to be deleted")
	}
	if c.Delete("nonexistent") {
		t.Error("expected Delete to return false for non-existing key")
	}
	if got := log.String(); got != "[key1]" {
		t.Errorf("evicted %s, want [key1]", got)
	}
}

func TestCacheClear(t *testing.T) {
	var log evictLog
	c := New[string, int](10, log.record)
	c.Set("key1", 1)
	c.Set("key2", 2)
	c.Set("key3", 3)

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("expected 0 entries after clear, got %d", c.Len())
	}
	if got := log.String(); got != "[key1 key2 key3]" {
		t.Errorf("Clear released %s, want oldest first [key1 key2 key3]", got)
	}
	c.Set("again", 4)
	if c.Len() != 1 {
		t.Error("cache unusable after Clear")
	}
}

func TestCacheEvictCallbackMayReenter(t *testing.T) {
	var c *Cache[string, int]
	c = New[string, int](1, func(string, int) { _ = c.Len() })
	c.Set("a", 1)
	c.Set("b", 2)
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[int, int](1000, nil)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set(n*100+j, n*100+j)
				c.Get(n*100 + j/2)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 1000 {
		t.Errorf("Len() = %d, want capacity 1000", c.Len())
	}
}

func TestListOrder(t *testing.T) {
	var l list[string, int]
	nodes := make([]*node[string, int], 4)
	for i := range nodes {
		nodes[i] = &node[string, int]{key: strconv.Itoa(i)}
		l.pushFront(nodes[i])
	}
	l.moveToFront(nodes[0])
	l.unlink(nodes[2])

	var got []string
	for n := l.head; n != nil; n = n.next {
		got = append(got, n.key)
	}
	if fmt.Sprint(got) != "[0 3 1]" {
		t.Errorf("order = %v, want [0 3 1]", got)
	}
	if l.len != 3 {
		t.Errorf("len = %d, want 3", l.len)
	}
	popped := 0
	for l.popBack() != nil {
		popped++
	}
	if popped != 3 {
		t.Errorf("popped %d nodes, want 3", popped)
	}
	if l.head != nil || l.tail != nil || l.len != 0 {
		t.Error("list not empty after popping everything")
	}
}
