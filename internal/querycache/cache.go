// Package querycache holds fetched collections keyed by query identity.
//
// Entries are read through Get, which refetches when an entry is missing or has been
// invalidated. Invalidate marks every entry under a key prefix stale; a fetch that was
// already running when the invalidation happened does not overwrite the entry.
package querycache

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value any
	stale bool
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	gens    map[string]uint64
	group   singleflight.Group
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		gens:    make(map[string]uint64),
	}
}

// Key joins identity parts: Key("tasks", "my") == "tasks:my".
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Get returns the cached value for key or loads it with fetch.
// Concurrent loads of one key share a single fetch.
func Get[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && !e.stale {
		c.mu.Unlock()
		return e.value.(T), nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		started, seen := c.gens[key]
		if !seen {
			c.gens[key] = started
		}
		c.mu.Unlock()

		value, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gens[key] == started {
			c.entries[key] = &entry{value: value}
		}
		c.mu.Unlock()

		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("querycache: %s holds %T", key, v)
	}
	return value, nil
}

// Invalidate marks every entry whose key starts with prefix as stale.
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range c.keysLocked() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		c.gens[key]++
		if e, ok := c.entries[key]; ok {
			e.stale = true
		}
		c.group.Forget(key)
	}
}

// Clear drops everything, used on logout.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range c.keysLocked() {
		c.gens[key]++
		c.group.Forget(key)
	}
	c.entries = make(map[string]*entry)
}

func (c *Cache) keysLocked() []string {
	keys := make([]string, 0, len(c.gens)+len(c.entries))
	for key := range c.gens {
		keys = append(keys, key)
	}
	for key := range c.entries {
		if _, ok := c.gens[key]; !ok {
			keys = append(keys, key)
		}
	}
	return keys
}
