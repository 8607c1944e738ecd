package goSession

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/session"
)

func issueTestToken(t *testing.T, secret string) string {
	t.Helper()
	m, err := jwt.NewManager(jwt.Config{
		TTL:           time.Hour,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte(secret),
		Issuer:        "storefront",
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	token, err := m.Issue("u-1", "ADMIN")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return token
}

func TestTokenClaimsRequiresSession(t *testing.T) {
	engine, _ := buildTestEngine(t, session.NewMemoryBackend(), nil)
	if _, _, err := engine.TokenClaims(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestTokenClaimsUnverified(t *testing.T) {
	engine, _ := buildTestEngine(t, session.NewMemoryBackend(), nil)
	token := issueTestToken(t, "secret")
	if err := engine.Establish(context.Background(), Profile{"id": "u-1"}, token); err != nil {
		t.Fatalf("establish: %v", err)
	}

	claims, verified, err := engine.TokenClaims()
	if err != nil {
		t.Fatalf("claims: %v", err)
	}
	if verified {
		t.Fatal("claims must be unverified without a token manager")
	}
	if claims.Subject != "u-1" || claims.Role != "ADMIN" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenClaimsVerifiedFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Token.SigningMethod = "hs256"
	cfg.Token.VerifyKey = "secret"
	cfg.Token.Issuer = "storefront"
	engine, _ := buildTestEngine(t, session.NewMemoryBackend(), func(b *Builder) { b.WithConfig(cfg) })
	ctx := context.Background()

	if err := engine.Establish(ctx, Profile{"id": "u-1"}, issueTestToken(t, "secret")); err != nil {
		t.Fatalf("establish: %v", err)
	}
	claims, verified, err := engine.TokenClaims()
	if err != nil || !verified || claims.Subject != "u-1" {
		t.Fatalf("claims=%+v verified=%v err=%v", claims, verified, err)
	}

	if err := engine.Establish(ctx, Profile{"id": "u-1"}, issueTestToken(t, "other")); err != nil {
		t.Fatalf("establish: %v", err)
	}
	if _, _, err := engine.TokenClaims(); !errors.Is(err, ErrTokenUnreadable) || !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenUnreadable wrapping ErrTokenInvalid, got %v", err)
	}
}

func TestTokenClaimsOpaqueToken(t *testing.T) {
	engine, _ := buildTestEngine(t, session.NewMemoryBackend(), nil)
	if err := engine.Establish(context.Background(), nil, "opaque-session-token"); err != nil {
		t.Fatalf("establish: %v", err)
	}
	if _, _, err := engine.TokenClaims(); !errors.Is(err, ErrTokenUnreadable) {
		t.Fatalf("expected ErrTokenUnreadable, got %v", err)
	}
	if !engine.Snapshot().Authenticated() {
		t.Fatal("opaque tokens still authenticate")
	}
}
