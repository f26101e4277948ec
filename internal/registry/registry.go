// Package registry provides keyed stores for resource descriptors:
// workers, tools, and knowledge sources. Registries are read-mostly after
// startup and safe for concurrent use.
package registry

import (
	"log/slog"
	"sync"
)

// Metadata is the descriptor stored for a resource.
type Metadata map[string]any

// Resource pairs a resource ID with its descriptor, as returned by queries.
type Resource struct {
	// ID is the resource's unique identifier.
	ID string
	// Metadata is the stored descriptor.
	Metadata Metadata
}

// Registry is an in-memory keyed store of resource descriptors.
// Iteration order is insertion order, which keeps capability lookups and
// allocation deterministic for a given registration sequence.
type Registry struct {
	mu        sync.RWMutex
	resources map[string]Metadata
	order     []string
	logger    *slog.Logger
}

// New creates an empty registry. A nil logger defaults to slog.Default().
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		resources: make(map[string]Metadata),
		logger:    logger,
	}
}

// Register stores a descriptor under the given ID. Registration is
// idempotent with last-write-wins semantics; re-registering keeps the
// resource's original position in iteration order.
func (r *Registry) Register(id string, metadata Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.resources[id]; !exists {
		r.order = append(r.order, id)
	}
	r.resources[id] = metadata
	r.logger.Debug("registered resource", "resource_id", id)
}

// Unregister removes a descriptor. Removing an unknown ID is a no-op,
// observable only as a warning.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.resources[id]; !exists {
		r.logger.Warn("unregister of unknown resource", "resource_id", id)
		return
	}
	delete(r.resources, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.logger.Debug("unregistered resource", "resource_id", id)
}

// Get returns the descriptor for the given ID.
func (r *Registry) Get(id string) (Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	md, ok := r.resources[id]
	return md, ok
}

// Query returns all resources whose descriptors match every criterion by
// equality, in registration order.
func (r *Registry) Query(criteria Metadata) []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []Resource
	for _, id := range r.order {
		md := r.resources[id]
		if matches(md, criteria) {
			results = append(results, Resource{ID: id, Metadata: md})
		}
	}
	return results
}

// All returns every resource in registration order.
func (r *Registry) All() []Resource {
	return r.Query(nil)
}

// Len returns the number of registered resources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources)
}

func matches(md, criteria Metadata) bool {
	for key, want := range criteria {
		got, ok := md[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}
