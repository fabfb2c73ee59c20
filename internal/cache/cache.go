// Package cache stores generation results keyed by canonical request
// keys so repeated requests skip provider calls.
package cache

import (
	"sort"
	"sync"
	"time"

	"musemind/internal/types"
)

// entry is one cached result with its insertion time.
type entry struct {
	result    *types.Result
	createdAt time.Time
}

// Cache is a thread-safe in-memory result cache. Entries live until
// Clear is called.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// Stats reports cache contents.
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// Get returns a copy of the cached result for a key, if present.
// Callers get their own copy so mutations never leak back into the
// cache.
func (c *Cache) Get(key string) (*types.Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.result.Copy(), true
}

// Age returns how long ago a key was cached.
func (c *Cache) Age(key string) (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	return time.Since(e.createdAt), true
}

// Put stores a copy of the result under a key, replacing any previous
// entry.
func (c *Cache) Put(key string, res *types.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{result: res.Copy(), createdAt: time.Now()}
}

// Clear removes all entries and returns how many were dropped.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]entry)
	return n
}

// Stats returns the current size and sorted keys.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Stats{Size: len(keys), Keys: keys}
}
