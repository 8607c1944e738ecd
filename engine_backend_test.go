package goSession

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestEngineRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig()
	cfg.Session.Backend = BackendRedis
	cfg.Session.KeyPrefix = "shop"

	build := func() *Engine {
		engine, err := New().WithConfig(cfg).WithRedis(client).WithLogger(zap.NewNop()).Build(context.Background())
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		return engine
	}

	first := build()
	if err := first.Establish(context.Background(), Profile{"id": "u-1", "role": "USER"}, "tok"); err != nil {
		t.Fatalf("establish: %v", err)
	}
	_ = first.Close()

	if got, _ := mr.Get("shop:token"); got != "tok" {
		t.Fatalf("token in redis = %q", got)
	}
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("injected client closed by engine: %v", err)
	}

	second := build()
	defer second.Close()
	if second.Snapshot().UserID() != "u-1" {
		t.Fatal("session not rehydrated from redis")
	}
}

func TestEngineRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.Session.Backend = BackendRedis
	cfg.Redis.Addr = addr

	client := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	_, err := New().WithConfig(cfg).WithRedis(client).WithLogger(zap.NewNop()).Build(context.Background())
	if !errors.Is(err, ErrSessionLoad) || !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrSessionLoad wrapping ErrBackendUnavailable, got %v", err)
	}
}

func TestEngineSQLiteBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Session.Backend = BackendSQLite
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "nested", "session.db")

	first, err := New().WithConfig(cfg).WithLogger(zap.NewNop()).Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := first.Establish(context.Background(), Profile{"id": "u-1"}, "tok"); err != nil {
		t.Fatalf("establish: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := New().WithConfig(cfg).WithLogger(zap.NewNop()).Build(context.Background())
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	defer second.Close()

	if second.Snapshot().Token() != "tok" {
		t.Fatal("session not rehydrated from sqlite")
	}
	if err := second.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := second.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if second.Snapshot().Authenticated() {
		t.Fatal("clear not persisted")
	}
}
