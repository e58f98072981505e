package communityhub

import (
	"sync"
	"time"
)

// docCache is an in-memory TTL cache over a document listing. Public pages
// read through it so every request does not hit the store; admin writes
// call Invalidate so the next read reloads.
//
// The cache is explicitly constructed and owned by the App — local state is
// a hint, the store is authoritative, and the TTL bounds how stale the hint
// can get.
type docCache[T any] struct {
	mu      sync.RWMutex
	items   []T
	fetched time.Time
	ttl     time.Duration
	fetch   func() ([]T, error)
}

func newDocCache[T any](fetch func() ([]T, error), ttl time.Duration) *docCache[T] {
	return &docCache[T]{fetch: fetch, ttl: ttl}
}

func (c *docCache[T]) valid() bool {
	return c.items != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *docCache[T]) Invalidate() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// Items returns the cached listing, reloading it if stale. It tries a read
// lock first; only takes a write lock if a reload is needed.
func (c *docCache[T]) Items() ([]T, error) {
	c.mu.RLock()
	if c.valid() {
		items := c.items
		c.mu.RUnlock()
		return items, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.items, nil
	}
	items, err := c.fetch()
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	c.items = items
	c.fetched = time.Now()
	return c.items, nil
}
