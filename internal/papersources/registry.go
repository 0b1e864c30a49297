package papersources

import (
	"sync"
)

// Registry manages paper sources in registration order.
// Order is significant: the literature retriever tries sources in the order
// they were registered. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	sources map[string]PaperSource
}

// NewRegistry creates a new empty source registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]PaperSource),
	}
}

// Register adds a source to the registry.
// If a source with the same name already exists, it is replaced in place and
// keeps its original position.
func (r *Registry) Register(source PaperSource) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := source.Name()
	if _, exists := r.sources[name]; !exists {
		r.order = append(r.order, name)
	}
	r.sources[name] = source
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// AllSources returns all registered sources in registration order.
// The returned slice is a snapshot.
func (r *Registry) AllSources() []PaperSource {
	return r.collect(func(PaperSource) bool { return true })
}

// EnabledSources returns the enabled sources in registration order.
// The returned slice is a snapshot.
func (r *Registry) EnabledSources() []PaperSource {
	return r.collect(PaperSource.IsEnabled)
}

func (r *Registry) collect(keep func(PaperSource) bool) []PaperSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]PaperSource, 0, len(r.order))
	for _, name := range r.order {
		if source := r.sources[name]; keep(source) {
			sources = append(sources, source)
		}
	}
	return sources
}
