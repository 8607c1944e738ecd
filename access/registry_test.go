package access

import (
	"errors"
	"reflect"
	"testing"
)

func TestRolesRegisterAndFreeze(t *testing.T) {
	roles := NewRoles()
	if err := roles.Register("USER", "ADMIN"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := roles.Register("ADMIN"); !errors.Is(err, ErrRoleExists) {
		t.Fatalf("expected ErrRoleExists, got %v", err)
	}
	if err := roles.Register(""); !errors.Is(err, ErrEmptyRole) {
		t.Fatalf("expected ErrEmptyRole, got %v", err)
	}
	// A failed batch registers nothing.
	if err := roles.Register("STAFF", "USER"); err == nil {
		t.Fatal("expected duplicate in batch to fail")
	}
	if roles.Has("STAFF") {
		t.Fatal("partial batch must not register")
	}

	roles.Freeze()
	if err := roles.Register("STAFF"); !errors.Is(err, ErrRolesFrozen) {
		t.Fatalf("expected ErrRolesFrozen, got %v", err)
	}
	if got := roles.Names(); !reflect.DeepEqual(got, []string{"ADMIN", "USER"}) {
		t.Fatalf("names = %v", got)
	}
	if roles.Count() != 2 {
		t.Fatalf("count = %d", roles.Count())
	}
}

func TestRoutesValidateAtRegistration(t *testing.T) {
	roles := NewRoles()
	_ = roles.Register("ADMIN")
	routes := NewRoutes(roles)

	if err := routes.Register("/admin", RequireRole("ADMIN")); err != nil {
		t.Fatalf("register admin: %v", err)
	}
	if err := routes.Register("/account", Authenticated()); err != nil {
		t.Fatalf("register account: %v", err)
	}

	tests := []struct {
		path string
		req  Requirement
		want error
	}{
		{"/admin", Public(), ErrRouteExists},
		{"", Public(), ErrEmptyPath},
		{"/staff", RequireRole("STAFF"), ErrUnknownRole},
		{"/blank", RequireRole(""), ErrRoleRequired},
		{"/zero", Requirement{}, ErrUnknownRequirement},
		{"/odd", Requirement{Kind: Kind(9)}, ErrUnknownRequirement},
	}
	for _, tc := range tests {
		if err := routes.Register(tc.path, tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("Register(%q, %v) = %v, want %v", tc.path, tc.req, err, tc.want)
		}
	}

	req, ok := routes.Lookup("/admin")
	if !ok || req != RequireRole("ADMIN") {
		t.Fatalf("lookup admin = %+v, %v", req, ok)
	}
	if _, ok := routes.Lookup("/missing"); ok {
		t.Fatal("unexpected lookup hit")
	}
	if routes.Len() != 2 {
		t.Fatalf("len = %d", routes.Len())
	}

	routes.Freeze()
	if err := routes.Register("/late", Public()); !errors.Is(err, ErrRoutesFrozen) {
		t.Fatalf("expected ErrRoutesFrozen, got %v", err)
	}
}

func TestRoutesWithoutRoleRegistryAcceptAnyRole(t *testing.T) {
	routes := NewRoutes(nil)
	if err := routes.Register("/vip", RequireRole("VIP")); err != nil {
		t.Fatalf("register: %v", err)
	}
}

func TestMustRegisterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewRoutes(nil).MustRegister("/x", Requirement{})
}

func TestRequirementString(t *testing.T) {
	if got := RequireRole("ADMIN").String(); got != "role:ADMIN" {
		t.Fatalf("got %q", got)
	}
	if got := Authenticated().String(); got != "authenticated" {
		t.Fatalf("got %q", got)
	}
	if got := (Requirement{}).String(); got != "kind(0)" {
		t.Fatalf("got %q", got)
	}
}
