package core

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Registry is the set of display names currently claimed by joined sessions.
// A single mutex guards the set and is never held across I/O.
type Registry struct {
	mu    sync.Mutex
	names map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Claim inserts name if it is absent and reports whether it did.
// The membership check and the insert happen under one lock acquisition.
func (r *Registry) Claim(name string) bool {
	if name == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.names[name]; taken {
		return false
	}
	r.names[name] = struct{}{}
	return true
}

// Release removes name. Releasing an absent name is a no-op.
func (r *Registry) Release(name string) {
	r.mu.Lock()
	delete(r.names, name)
	r.mu.Unlock()
}

// Contains reports whether name is currently claimed.
func (r *Registry) Contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.names[name]
	return ok
}

// Len returns the number of claimed names.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names)
}

// Names returns a sorted snapshot of the claimed names.
func (r *Registry) Names() []string {
	r.mu.Lock()
	names := lo.Keys(r.names)
	r.mu.Unlock()

	slices.Sort(names)
	return names
}
