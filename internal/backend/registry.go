package backend

import (
	"fmt"
	"sync"
)

// Registry is an ordered set of backends keyed by name.
type Registry struct {
	mu       sync.RWMutex
	backends []Backend
}

// NewRegistry creates a registry holding backends in the given order.
func NewRegistry(backends ...Backend) (*Registry, error) {
	r := &Registry{}
	for _, b := range backends {
		if err := r.Register(b); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends b. Names must be unique.
func (r *Registry) Register(b Backend) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.backends {
		if existing.Name() == b.Name() {
			return fmt.Errorf("backend %q already registered", b.Name())
		}
	}
	r.backends = append(r.backends, b)
	return nil
}

// Get returns the backend registered under name.
func (r *Registry) Get(name string) (Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.backends {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}

// All returns every registered backend in registration order.
func (r *Registry) All() []Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Backend, len(r.backends))
	copy(out, r.backends)
	return out
}

// Available returns the registered backends that can run on this machine.
func (r *Registry) Available() []Backend {
	var out []Backend
	for _, b := range r.All() {
		if b.Available() {
			out = append(out, b)
		}
	}
	return out
}

// Names returns the registered backend names in order.
func (r *Registry) Names() []string {
	var names []string
	for _, b := range r.All() {
		names = append(names, b.Name())
	}
	return names
}

// Select returns the named backends in registration order. An empty list
// selects every available backend. Naming an unknown backend is an error;
// naming one that is unavailable is not, it is simply left out.
func (r *Registry) Select(names []string) ([]Backend, error) {
	if len(names) == 0 {
		return r.Available(), nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := r.Get(name); !ok {
			return nil, fmt.Errorf("unknown language %q (known: %v)", name, r.Names())
		}
		wanted[name] = true
	}

	var out []Backend
	for _, b := range r.Available() {
		if wanted[b.Name()] {
			out = append(out, b)
		}
	}
	return out, nil
}
