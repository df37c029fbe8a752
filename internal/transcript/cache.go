package transcript

import (
	"slices"
	"sync"

	"transcriptor/internal/videoid"
)

// Cache memoizes successful results per identifier for the lifetime of an
// Extractor. Entries never expire; call Clear to drop them.
type Cache struct {
	mu      sync.RWMutex
	entries map[videoid.ID]Result
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[videoid.ID]Result)}
}

// Lookup returns a copy of the cached result for id.
func (c *Cache) Lookup(id videoid.ID) (Result, bool) {
	if c == nil {
		return Result{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.entries[id]
	if !ok {
		return Result{}, false
	}
	return result.Clone(), true
}

// Store records a copy of result under id.
func (c *Cache) Store(id videoid.ID, result Result) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = result.Clone()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len reports the number of cached identifiers.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the cached identifiers in sorted order.
func (c *Cache) Keys() []videoid.ID {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	keys := make([]videoid.ID, 0, len(c.entries))
	for id := range c.entries {
		keys = append(keys, id)
	}
	c.mu.RUnlock()
	slices.Sort(keys)
	return keys
}
