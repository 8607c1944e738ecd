package access

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrRoutesFrozen = errors.New("route table frozen")
	ErrRouteExists  = errors.New("route already registered")
	ErrEmptyPath    = errors.New("route path empty")
)

// Routes maps destination paths to requirements. Every requirement is
// validated on registration so misconfiguration fails at startup.
type Routes struct {
	roles *Roles

	mu     sync.RWMutex
	byPath map[string]Requirement
	frozen bool
}

// NewRoutes creates a route table. When roles is non-nil, role requirements
// must name a registered role.
func NewRoutes(roles *Roles) *Routes {
	return &Routes{
		roles:  roles,
		byPath: make(map[string]Requirement),
	}
}

// Register attaches req to path.
func (t *Routes) Register(path string, req Requirement) error {
	if path == "" {
		return ErrEmptyPath
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("route %s: %w", path, err)
	}
	if req.NeedsRole() && t.roles != nil && !t.roles.Has(req.Role) {
		return fmt.Errorf("route %s: %w: %s", path, ErrUnknownRole, req.Role)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frozen {
		return ErrRoutesFrozen
	}
	if _, exists := t.byPath[path]; exists {
		return fmt.Errorf("%w: %s", ErrRouteExists, path)
	}
	t.byPath[path] = req
	return nil
}

// MustRegister is Register for static tables; it panics on error.
func (t *Routes) MustRegister(path string, req Requirement) {
	if err := t.Register(path, req); err != nil {
		panic(err)
	}
}

// Lookup returns the requirement registered for path.
func (t *Routes) Lookup(path string) (Requirement, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	req, ok := t.byPath[path]
	return req, ok
}

// Len returns the number of registered routes.
func (t *Routes) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byPath)
}

// Freeze rejects further registrations.
func (t *Routes) Freeze() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen = true
}
