package access

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRequirement is returned for a requirement whose kind is not
	// one of the declared kinds.
	ErrUnknownRequirement = errors.New("unknown access requirement")
	// ErrRoleRequired is returned for a role requirement with an empty role.
	ErrRoleRequired = errors.New("role requirement without role")
)

// Kind classifies a [Requirement].
type Kind uint8

const (
	kindInvalid Kind = iota
	// KindPublic needs nothing.
	KindPublic
	// KindAuthenticated needs a signed-in subject.
	KindAuthenticated
	// KindRole needs a signed-in subject with a specific role.
	KindRole
)

func (k Kind) String() string {
	switch k {
	case KindPublic:
		return "public"
	case KindAuthenticated:
		return "authenticated"
	case KindRole:
		return "role"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Requirement is the authorization rule attached to a destination. The zero
// value is invalid; build one with [Public], [Authenticated] or [RequireRole].
type Requirement struct {
	Kind Kind
	Role string
}

// Public returns a requirement that allows every subject.
func Public() Requirement { return Requirement{Kind: KindPublic} }

// Authenticated returns a requirement that needs a signed-in subject.
func Authenticated() Requirement { return Requirement{Kind: KindAuthenticated} }

// RequireRole returns a requirement that needs a signed-in subject whose role
// equals role.
func RequireRole(role string) Requirement { return Requirement{Kind: KindRole, Role: role} }

// NeedsAuth reports whether the requirement needs authentication. Role
// requirements imply it.
func (r Requirement) NeedsAuth() bool {
	return r.Kind == KindAuthenticated || r.Kind == KindRole
}

// NeedsRole reports whether the requirement names a role.
func (r Requirement) NeedsRole() bool {
	return r.Kind == KindRole
}

// Validate reports structural problems with the requirement.
func (r Requirement) Validate() error {
	switch r.Kind {
	case KindPublic, KindAuthenticated:
		return nil
	case KindRole:
		if r.Role == "" {
			return ErrRoleRequired
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownRequirement, r.Kind)
	}
}

func (r Requirement) String() string {
	if r.Kind == KindRole {
		return "role:" + r.Role
	}
	return r.Kind.String()
}
