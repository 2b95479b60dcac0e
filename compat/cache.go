package compat

import "sync"

// ProgramCache stores compiled predicate programs keyed by their expression
// source.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type memoryProgramCache struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewMemoryProgramCache returns a ProgramCache backed by an in-process map.
func NewMemoryProgramCache() ProgramCache {
	return &memoryProgramCache{entries: make(map[string]any)}
}

func (c *memoryProgramCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

func (c *memoryProgramCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]any)
	}
	c.entries[key] = value
}
