package cache

import (
	"container/list"
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LoadFunc produces the value for a key on a cache miss.
type LoadFunc[V any] func(ctx context.Context, key string) (V, error)

// Cache is a bounded LRU keyed by subject id. Pinned entries are never
// evicted, so the cache can grow past its capacity while many are in use.
// Concurrent misses for one key share a single load.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	items    map[string]*list.Element
	pins     map[string]int
	load     LoadFunc[V]
	group    singleflight.Group
}

type entry[V any] struct {
	key   string
	value V
}

// New returns a cache holding up to capacity unpinned entries.
func New[V any](capacity int, load LoadFunc[V]) *Cache[V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		pins:     make(map[string]int),
		load:     load,
	}
}

// Get returns the cached value for key, loading it on a miss.
// Failed loads are not cached. The load is shared by every concurrent
// caller, so it runs detached from the cancellation of whichever caller
// started it.
func (c *Cache[V]) Get(ctx context.Context, key string) (V, error) {
	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		v := el.Value.(*entry[V]).value
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	res, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		if el, ok := c.items[key]; ok {
			c.mu.Unlock()
			return el.Value.(*entry[V]).value, nil
		}
		c.mu.Unlock()

		v, err := c.load(context.WithoutCancel(ctx), key)
		if err != nil {
			return v, err
		}
		c.add(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Peek returns the cached value without loading or touching recency.
func (c *Cache[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		return el.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

// Pin protects key from eviction until a matching Unpin.
// Pinning a key that is not cached yet protects it once loaded.
func (c *Cache[V]) Pin(key string) {
	c.mu.Lock()
	c.pins[key]++
	c.mu.Unlock()
}

// Unpin releases one Pin and evicts down to capacity.
func (c *Cache[V]) Unpin(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pins[key] <= 1 {
		delete(c.pins, key)
	} else {
		c.pins[key]--
	}
	c.evict()
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache[V]) add(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*entry[V]).value = v
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&entry[V]{key: key, value: v})
	c.evict()
}

// evict drops least recently used unpinned entries, never the most recent
// one. Callers hold mu.
func (c *Cache[V]) evict() {
	front := c.order.Front()
	for el := c.order.Back(); el != nil && el != front && len(c.items) > c.capacity; {
		prev := el.Prev()
		e := el.Value.(*entry[V])
		if c.pins[e.key] == 0 {
			c.order.Remove(el)
			delete(c.items, e.key)
		}
		el = prev
	}
}
