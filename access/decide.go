package access

// Subject is the read side of a session consumed by [Decide].
// session.Snapshot satisfies it.
type Subject interface {
	Authenticated() bool
	Role() (string, bool)
}

// Outcome is the result class of a [Decision].
type Outcome uint8

const (
	Allow Outcome = iota
	RedirectLogin
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Destinations names the logical redirect targets.
type Destinations struct {
	Login string
	Home  string
}

// DefaultDestinations returns "/login" and "/".
func DefaultDestinations() Destinations {
	return Destinations{Login: "/login", Home: "/"}
}

// Decision is the outcome of one evaluation. Target is empty when allowed.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Allowed reports whether the destination may be rendered.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// Decide evaluates req against subject. It is total and side-effect free. A
// nil subject is unauthenticated; a requirement of unknown kind is treated as
// needing authentication the subject cannot prove and redirects to login.
func Decide(req Requirement, subject Subject, to Destinations) Decision {
	authenticated := subject != nil && subject.Authenticated()

	switch req.Kind {
	case KindPublic:
		return Decision{Outcome: Allow}
	case KindAuthenticated, KindRole:
	default:
		return Decision{Outcome: RedirectLogin, Target: to.Login}
	}

	if !authenticated {
		return Decision{Outcome: RedirectLogin, Target: to.Login}
	}

	if req.NeedsRole() {
		role, ok := subject.Role()
		if !ok || req.Role == "" || role != req.Role {
			return Decision{Outcome: RedirectHome, Target: to.Home}
		}
	}

	return Decision{Outcome: Allow}
}
