package goSession

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/logger"
)

// Config holds every engine setting. Start from [DefaultConfig] and override
// fields, or load one with [LoadConfig].
type Config struct {
	Session  SessionConfig
	Redis    RedisConfig
	SQLite   SQLiteConfig
	Access   AccessConfig
	Activity ActivityConfig
	Token    TokenConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
	Log      logger.Config
}

// Backend names accepted by SessionConfig.Backend.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// SessionConfig selects where the session is persisted and under which keys.
type SessionConfig struct {
	Backend    string
	ProfileKey string
	TokenKey   string
	// KeyPrefix namespaces keys in shared Redis deployments.
	KeyPrefix string
}

// RedisConfig is used when Session.Backend is "redis" and no client is
// injected through [Builder.WithRedis].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SQLiteConfig is used when Session.Backend is "sqlite".
type SQLiteConfig struct {
	Path string
}

// AccessConfig names the redirect destinations and the declared roles.
type AccessConfig struct {
	LoginPath string
	HomePath  string
	Roles     []string
}

// ActivityConfig tunes tracked-operation reporting.
type ActivityConfig struct {
	// SlowOperationThreshold logs and counts tracked operations that stay
	// outstanding longer than this. Zero disables the check.
	SlowOperationThreshold time.Duration
}

// TokenConfig enables reading session tokens as JWTs. With SigningMethod
// empty, claims are decoded without verification.
type TokenConfig struct {
	SigningMethod string // "", "ed25519" or "hs256"
	VerifyKey     string // PEM public key (ed25519) or shared secret (hs256)
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// DrainTimeout bounds how long Close waits for queued events.
	DrainTimeout time.Duration
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns an in-memory session with "user"/"token" keys,
// "/login" and "/" destinations, and audit and metrics off.
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			Backend:    BackendMemory,
			ProfileKey: "user",
			TokenKey:   "token",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		SQLite: SQLiteConfig{
			Path: "data/session.db",
		},
		Access: AccessConfig{
			LoginPath: "/login",
			HomePath:  "/",
		},
		Activity: ActivityConfig{
			SlowOperationThreshold: 10 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:      false,
			BufferSize:   1024,
			DropIfFull:   true,
			DrainTimeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Log: logger.DefaultConfig(),
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Access.Roles != nil {
		out.Access.Roles = append([]string(nil), cfg.Access.Roles...)
	}
	return out
}

// Validate reports the first structural problem in c, wrapped in
// [ErrInvalidConfig].
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	switch c.Session.Backend {
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return invalid("Redis Addr required for redis backend")
		}
		if c.Redis.DB < 0 {
			return invalid("Redis DB must be >= 0")
		}
	case BackendSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			return invalid("SQLite Path required for sqlite backend")
		}
	default:
		return invalid("unsupported session backend %q", c.Session.Backend)
	}

	if c.Session.ProfileKey == "" || c.Session.TokenKey == "" {
		return invalid("Session ProfileKey and TokenKey must be set")
	}
	if c.Session.ProfileKey == c.Session.TokenKey {
		return invalid("Session ProfileKey and TokenKey must differ")
	}

	if !strings.HasPrefix(c.Access.LoginPath, "/") {
		return invalid("Access LoginPath must be an absolute path")
	}
	if !strings.HasPrefix(c.Access.HomePath, "/") {
		return invalid("Access HomePath must be an absolute path")
	}
	seen := make(map[string]struct{}, len(c.Access.Roles))
	for _, role := range c.Access.Roles {
		if role == "" {
			return invalid("Access Roles contains an empty role")
		}
		if _, dup := seen[role]; dup {
			return invalid("Access Roles contains duplicate %q", role)
		}
		seen[role] = struct{}{}
	}

	if c.Activity.SlowOperationThreshold < 0 {
		return invalid("Activity SlowOperationThreshold must be >= 0")
	}

	switch c.Token.SigningMethod {
	case "":
	case "ed25519", "hs256":
		if c.Token.VerifyKey == "" {
			return invalid("Token VerifyKey required for %s", c.Token.SigningMethod)
		}
	default:
		return invalid("unsupported Token SigningMethod %q", c.Token.SigningMethod)
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return invalid("Audit BufferSize must be > 0")
	}
	if c.Audit.DrainTimeout < 0 {
		return invalid("Audit DrainTimeout must be >= 0")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return invalid("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}
	return nil
}
