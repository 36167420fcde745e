package viewer

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor builds a viewer for a request.
type Constructor func(req Request, env Env) (Viewer, error)

// Registry maps view type tags to constructors.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register adds a constructor for tag.
func (r *Registry) Register(tag string, ctor Constructor) error {
	if ctor == nil {
		return fmt.Errorf("nil constructor for %s", tag)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ctors[tag]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, tag)
	}
	r.ctors[tag] = ctor
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(tag string, ctor Constructor) {
	if err := r.Register(tag, ctor); err != nil {
		panic(err)
	}
}

// New constructs a viewer for req.ViewType.
func (r *Registry) New(req Request, env Env) (Viewer, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[req.ViewType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownViewType, req.ViewType)
	}
	return ctor(req, env)
}

// Has reports whether tag is registered.
func (r *Registry) Has(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[tag]
	return ok
}

// Types returns every registered tag, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.ctors))
	for t := range r.ctors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Count returns the number of registered tags.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ctors)
}

// Unregister removes tag.
func (r *Registry) Unregister(tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ctors, tag)
}
