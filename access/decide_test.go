package access_test

import (
	"testing"

	"github.com/MrEthical07/goSession/access"
	"github.com/MrEthical07/goSession/session"
)

func TestDecideRoleRequirementTable(t *testing.T) {
	to := access.DefaultDestinations()
	req := access.RequireRole("ADMIN")

	cases := []struct {
		name string
		snap session.Snapshot
		want access.Decision
	}{
		{
			name: "unauthenticated",
			snap: session.NewSnapshot(session.Profile{"role": "ADMIN"}, ""),
			want: access.Decision{Outcome: access.RedirectLogin, Target: "/login"},
		},
		{
			name: "wrong role",
			snap: session.NewSnapshot(session.Profile{"role": "USER"}, "tok"),
			want: access.Decision{Outcome: access.RedirectHome, Target: "/"},
		},
		{
			name: "matching role",
			snap: session.NewSnapshot(session.Profile{"role": "ADMIN"}, "tok"),
			want: access.Decision{Outcome: access.Allow},
		},
		{
			name: "token without profile",
			snap: session.NewSnapshot(nil, "tok"),
			want: access.Decision{Outcome: access.RedirectHome, Target: "/"},
		},
		{
			name: "non-string role",
			snap: session.NewSnapshot(session.Profile{"role": 1.0}, "tok"),
			want: access.Decision{Outcome: access.RedirectHome, Target: "/"},
		},
		{
			name: "role is case sensitive",
			snap: session.NewSnapshot(session.Profile{"role": "admin"}, "tok"),
			want: access.Decision{Outcome: access.RedirectHome, Target: "/"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := access.Decide(req, tc.snap, to); got != tc.want {
				t.Fatalf("Decide = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDecideAuthenticatedRequirement(t *testing.T) {
	to := access.Destinations{Login: "/signin", Home: "/shop"}
	req := access.Authenticated()

	if got := access.Decide(req, session.Snapshot{}, to); got.Outcome != access.RedirectLogin || got.Target != "/signin" {
		t.Fatalf("empty session: %+v", got)
	}
	if got := access.Decide(req, session.NewSnapshot(nil, "tok"), to); !got.Allowed() {
		t.Fatalf("token only: %+v", got)
	}
	// A profile without a token is not a signed-in user.
	if got := access.Decide(req, session.NewSnapshot(session.Profile{"role": "ADMIN"}, ""), to); got.Outcome != access.RedirectLogin {
		t.Fatalf("profile only: %+v", got)
	}
}

func TestDecidePublicAllowsEveryone(t *testing.T) {
	to := access.DefaultDestinations()
	for _, subject := range []access.Subject{nil, session.Snapshot{}, session.NewSnapshot(nil, "tok")} {
		if got := access.Decide(access.Public(), subject, to); !got.Allowed() || got.Target != "" {
			t.Fatalf("public decision for %v = %+v", subject, got)
		}
	}
}

func TestDecideFailsClosed(t *testing.T) {
	to := access.DefaultDestinations()
	admin := session.NewSnapshot(session.Profile{"role": "ADMIN"}, "tok")

	if got := access.Decide(access.Requirement{}, admin, to); got.Outcome != access.RedirectLogin {
		t.Fatalf("zero requirement must fail closed, got %+v", got)
	}
	if got := access.Decide(access.Requirement{Kind: access.Kind(42)}, admin, to); got.Outcome != access.RedirectLogin {
		t.Fatalf("unknown kind must fail closed, got %+v", got)
	}
	if got := access.Decide(access.RequireRole(""), admin, to); got.Outcome != access.RedirectHome {
		t.Fatalf("empty role must never match, got %+v", got)
	}
	if got := access.Decide(access.RequireRole("ADMIN"), nil, to); got.Outcome != access.RedirectLogin {
		t.Fatalf("nil subject must be unauthenticated, got %+v", got)
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	to := access.DefaultDestinations()
	snap := session.NewSnapshot(session.Profile{"role": "USER"}, "tok")
	first := access.Decide(access.RequireRole("USER"), snap, to)
	for i := 0; i < 100; i++ {
		if got := access.Decide(access.RequireRole("USER"), snap, to); got != first {
			t.Fatalf("iteration %d: %+v != %+v", i, got, first)
		}
	}
}
