package source

import (
	"sort"
	"sync"

	dErrors "github.com/Shekel-Africa/vin-package-sub000/pkg/domain-errors"
)

// Registry holds sources by name so callers extend the decoder by
// registration instead of editing a switch somewhere.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a source. Registering a name twice is a conflict.
func (r *Registry) Register(s Source) error {
	if s == nil {
		return dErrors.New(dErrors.CodeBadRequest, "source must not be nil")
	}
	name := s.Name()
	if name == "" {
		return dErrors.New(dErrors.CodeBadRequest, "source name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[name]; exists {
		return dErrors.Newf(dErrors.CodeConflict, "source %q already registered", name)
	}
	r.sources[name] = s
	return nil
}

// Get returns the source registered under name.
func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sources[name]
	return s, ok
}

// All returns every registered source sorted by priority, then name for
// deterministic ordering among equal priorities.
func (r *Registry) All() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority() != out[j].Priority() {
			return out[i].Priority() < out[j].Priority()
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

// Names returns the registered names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
