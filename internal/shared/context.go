// Package shared provides a process-wide mutable key-value store used to
// record cross-cutting status visible to all components.
package shared

import "sync"

// Context is a concurrency-safe mapping from string keys to arbitrary
// values. Only the latest value per key is retained.
type Context struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewContext creates an empty shared context.
func NewContext() *Context {
	return &Context{data: make(map[string]any)}
}

// Set stores a value under the given key, replacing any existing value.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// Get returns the value stored under the given key.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

// Update shallow-merges fields into the map stored at key, creating the
// entry if absent. A non-map value at key is replaced by the merge result.
func (c *Context) Update(key string, fields map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, _ := c.data[key].(map[string]any)
	merged := make(map[string]any, len(existing)+len(fields))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	c.data[key] = merged
}

// Delete removes the value stored under the given key.
func (c *Context) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// All returns a shallow copy of the stored data.
func (c *Context) All() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]any, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}
