package access

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrRolesFrozen = errors.New("role registry frozen")
	ErrRoleExists  = errors.New("role already registered")
	ErrUnknownRole = errors.New("role not registered")
	ErrEmptyRole   = errors.New("role name empty")
)

// Roles is the set of role names requirements may refer to.
//
// Roles are registered during initialization and the set is frozen before
// serving; lookups are safe for concurrent use.
type Roles struct {
	mu     sync.RWMutex
	names  map[string]struct{}
	frozen bool
}

// NewRoles returns an empty registry.
func NewRoles() *Roles {
	return &Roles{names: make(map[string]struct{})}
}

// Register adds role names. It fails on empty or duplicate names and after
// [Roles.Freeze].
func (r *Roles) Register(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRolesFrozen
	}
	for _, name := range names {
		if name == "" {
			return ErrEmptyRole
		}
		if _, exists := r.names[name]; exists {
			return ErrRoleExists
		}
	}
	for _, name := range names {
		r.names[name] = struct{}{}
	}
	return nil
}

// Has reports whether name is registered.
func (r *Roles) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.names[name]
	return ok
}

// Freeze rejects further registrations.
func (r *Roles) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of registered roles.
func (r *Roles) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Names returns the registered roles in sorted order.
func (r *Roles) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.names))
	for name := range r.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
