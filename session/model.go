package session

// RoleField is the only profile field interpreted by this module.
const RoleField = "role"

// IDField is read, when present, to label audit events and logs.
const IDField = "id"

// Profile is the open, application-defined record of the signed-in user.
type Profile map[string]any

// Clone returns a deep copy of p. Nested maps and slices are copied as well so
// the result shares no mutable state with p.
func (p Profile) Clone() Profile {
	if p == nil {
		return nil
	}
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// Role returns the profile role when it is a non-empty string.
func (p Profile) Role() (string, bool) {
	role, ok := p[RoleField].(string)
	if !ok || role == "" {
		return "", false
	}
	return role, true
}

// ID returns the profile id rendered as a string, if any.
func (p Profile) ID() string {
	id, _ := p[IDField].(string)
	return id
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Profile:
		return t.Clone()
	case map[string]any:
		return map[string]any(Profile(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Snapshot is an immutable point-in-time read of a session.
//
// The zero value is the empty, unauthenticated session.
type Snapshot struct {
	profile Profile
	token   string
}

// NewSnapshot builds a snapshot from explicit values. It is mainly useful to
// routing code and tests that evaluate access decisions without a [Store].
func NewSnapshot(profile Profile, token string) Snapshot {
	return Snapshot{profile: profile.Clone(), token: token}
}

// Profile returns a copy of the profile, or nil when none is present.
func (s Snapshot) Profile() Profile {
	return s.profile.Clone()
}

// HasProfile reports whether a profile is present.
func (s Snapshot) HasProfile() bool {
	return s.profile != nil
}

// Token returns the opaque bearer credential, or "" when absent.
func (s Snapshot) Token() string {
	return s.token
}

// Authenticated reports token presence. It is the only source of truth for
// the signed-in state.
func (s Snapshot) Authenticated() bool {
	return s.token != ""
}

// Role returns the profile role; a token without a profile has no role.
func (s Snapshot) Role() (string, bool) {
	return s.profile.Role()
}

// UserID returns the profile id field, if any.
func (s Snapshot) UserID() string {
	return s.profile.ID()
}
