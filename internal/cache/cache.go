package cache

import (
	"context"
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	ttl       time.Duration
	writtenAt time.Time
}

// Cache is a generic read-through cache with per-entry TTLs, used to
// front slow-changing reads (profile, course list, document list). An
// expired entry is treated as absent and never served.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]
	now     func() time.Time
}

// New creates a Cache using the given clock. Pass time.Now in
// production; tests inject a fake clock.
func New[T any](now func() time.Time) *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]entry[T]),
		now:     now,
	}
}

// GetOrFetch returns the cached value when a valid entry exists,
// otherwise invokes fetch, stores the result with the current timestamp
// and returns it. Fetch errors are not cached.
func (c *Cache[T]) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Sub(e.writtenAt) < e.ttl {
		c.mu.Unlock()
		return e.value, nil
	}
	c.mu.Unlock()

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	c.entries[key] = entry[T]{value: value, ttl: ttl, writtenAt: c.now()}
	c.mu.Unlock()
	return value, nil
}

// Invalidate drops one entry.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// RevalidateOnForeground drops every entry whose age exceeds its TTL.
// Called when the host application regains foreground visibility so a
// long-lived session cannot keep serving stale data without polling.
func (c *Cache[T]) RevalidateOnForeground() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, e := range c.entries {
		if now.Sub(e.writtenAt) >= e.ttl {
			delete(c.entries, key)
		}
	}
}
