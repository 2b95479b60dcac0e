package transform

import (
	"fmt"
	"sort"
	"sync"
)

// PluginFunc inspects the parsed source and returns the edits one plugin pass
// wants to make. It must not modify ctx.
type PluginFunc func(ctx *Context) ([]Edit, error)

// Registry stores plugin implementations keyed by identifier.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]PluginFunc
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]PluginFunc),
	}
}

// Register stores fn under name guarding against duplicates.
func (r *Registry) Register(name string, fn PluginFunc) error {
	if fn == nil {
		return fmt.Errorf("transform: plugin %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("transform: plugin name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.plugins == nil {
		r.plugins = make(map[string]PluginFunc)
	}
	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("transform: plugin %q already registered", name)
	}
	r.plugins[name] = fn
	return nil
}

// Lookup returns the plugin registered for name.
func (r *Registry) Lookup(name string) (PluginFunc, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.plugins[name]
	return fn, ok
}

// Names lists registered plugin identifiers sorted alphabetically.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy of the registry.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &Registry{
		plugins: make(map[string]PluginFunc, len(r.plugins)),
	}
	for name, fn := range r.plugins {
		clone.plugins[name] = fn
	}
	return clone
}
