package cache

import (
	"sync"
	"time"
)

// Cache is a small in-process TTL cache. It is used to soften repeated
// user lookups on the auth guard path; entries are evicted lazily on read.
type Cache[V any] struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry[V]
}

type entry[V any] struct {
	val V
	exp time.Time
}

func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache[V]{
		ttl: ttl,
		m:   make(map[string]entry[V]),
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	now := time.Now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return zero, false
	}

	return e.val, true
}

func (c *Cache[V]) Set(key string, val V) {
	c.mu.Lock()
	c.m[key] = entry[V]{val: val, exp: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.m = make(map[string]entry[V])
	c.mu.Unlock()
}
