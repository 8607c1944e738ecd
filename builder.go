package goSession

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/goSession/access"
	"github.com/MrEthical07/goSession/activity"
	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/logger"
	"github.com/MrEthical07/goSession/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// tokenVerifyTTL is required by jwt.NewManager but only affects issuing,
// which an engine never does.
const tokenVerifyTTL = time.Minute

type routeSpec struct {
	path string
	req  Requirement
}

// Builder assembles an [Engine]. It is configured during initialization and
// used once.
type Builder struct {
	config Config

	backend session.Backend
	redis   redis.UniversalClient
	log     *zap.Logger
	tokens  *jwt.Manager

	auditSink     AuditSink
	routes        []routeSpec
	busyListeners []func(busy bool)

	built bool
}

// New returns a builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBackend injects a session backend. It overrides Session.Backend and is
// not closed by [Engine.Close].
func (b *Builder) WithBackend(backend session.Backend) *Builder {
	b.backend = backend
	return b
}

// WithRedis injects the client used by the redis backend instead of dialing
// Redis.Addr.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithLogger injects a logger instead of building one from Config.Log.
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.log = log
	return b
}

// WithTokenManager injects the JWT manager used by [Engine.TokenClaims].
func (b *Builder) WithTokenManager(m *jwt.Manager) *Builder {
	b.tokens = m
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithRoute registers a route requirement. Routes are validated against the
// declared roles during Build.
func (b *Builder) WithRoute(path string, req Requirement) *Builder {
	b.routes = append(b.routes, routeSpec{path: path, req: req})
	return b
}

// WithBusyListener subscribes fn to busy transitions before the engine
// starts, so no transition can be missed.
func (b *Builder) WithBusyListener(fn func(busy bool)) *Builder {
	if fn != nil {
		b.busyListeners = append(b.busyListeners, fn)
	}
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, opens the session backend and
// rehydrates the persisted session.
//
// A malformed persisted profile is recovered and reported through
// [Engine.LastLoadReport]; a backend that cannot be read fails the build with
// [ErrSessionLoad].
func (b *Builder) Build(ctx context.Context) (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	b.built = true

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := b.log
	if log == nil {
		l, err := logger.New(cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		log = l
	}

	tokens := b.tokens
	if tokens == nil && cfg.Token.SigningMethod != "" {
		m, err := newVerifyManager(cfg.Token)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		tokens = m
	}

	// -------- ROLES & ROUTES --------
	roles := access.NewRoles()
	if err := roles.Register(cfg.Access.Roles...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	roles.Freeze()

	var routeRoles *access.Roles
	if roles.Count() > 0 {
		routeRoles = roles
	}
	routes := access.NewRoutes(routeRoles)
	for _, r := range b.routes {
		if err := routes.Register(r.path, r.req); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	routes.Freeze()

	// -------- SESSION BACKEND --------
	backend, owned, err := b.openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:      cfg,
		log:         log,
		backend:     backend,
		ownsBackend: owned,
		roles:       roles,
		routes:      routes,
		dest: access.Destinations{
			Login: cfg.Access.LoginPath,
			Home:  cfg.Access.HomePath,
		},
		tokens:  tokens,
		metrics: NewMetrics(cfg.Metrics),
	}
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:      cfg.Audit.Enabled,
		BufferSize:   cfg.Audit.BufferSize,
		DropIfFull:   cfg.Audit.DropIfFull,
		DrainTimeout: cfg.Audit.DrainTimeout,
	}, b.auditSink)
	engine.store = session.NewStore(backend, session.Keys{
		Profile: cfg.Session.ProfileKey,
		Token:   cfg.Session.TokenKey,
	})

	// -------- ACTIVITY --------
	engine.activity = activity.New(
		activity.WithLogger(log.Named("activity")),
		activity.WithBeginHook(engine.onActivityBegin),
		activity.WithEndHook(engine.onActivityEnd),
		activity.WithMisuseHook(engine.onActivityMisuse),
	)
	for _, fn := range b.busyListeners {
		engine.activity.OnChange(fn)
	}

	// -------- REHYDRATE --------
	if _, err := engine.Reload(ctx); err != nil {
		engine.Close()
		return nil, err
	}

	log.Info("session engine ready",
		zap.String("backend", backendName(engine.backend)),
		zap.Int("roles", roles.Count()),
		zap.Int("routes", routes.Len()),
		zap.Bool("authenticated", engine.Snapshot().Authenticated()),
	)
	return engine, nil
}

func (b *Builder) openBackend(ctx context.Context, cfg Config) (session.Backend, bool, error) {
	if b.backend != nil {
		return b.backend, false, nil
	}

	switch cfg.Session.Backend {
	case BackendRedis:
		client := b.redis
		if client == nil {
			client = redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
		}
		backend := session.NewRedisBackend(client, cfg.Session.KeyPrefix)
		if err := backend.Ping(ctx); err != nil {
			if b.redis == nil {
				_ = client.Close()
			}
			return nil, false, fmt.Errorf("%w: %w", ErrSessionLoad, err)
		}
		if b.redis == nil {
			return &ownedRedisBackend{RedisBackend: backend, client: client}, true, nil
		}
		return backend, false, nil
	case BackendSQLite:
		backend, err := session.NewSQLiteBackend(cfg.SQLite.Path)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w: %v", ErrSessionLoad, session.ErrBackendUnavailable, err)
		}
		return backend, true, nil
	default:
		return session.NewMemoryBackend(), true, nil
	}
}

// ownedRedisBackend closes a client the builder dialed itself.
type ownedRedisBackend struct {
	*session.RedisBackend
	client redis.UniversalClient
}

func (b *ownedRedisBackend) Close() error {
	return b.client.Close()
}

func newVerifyManager(cfg TokenConfig) (*jwt.Manager, error) {
	jc := jwt.Config{
		TTL:           tokenVerifyTTL,
		SigningMethod: jwt.SigningMethod(cfg.SigningMethod),
		Issuer:        cfg.Issuer,
		Audience:      cfg.Audience,
		Leeway:        cfg.Leeway,
	}
	if jc.SigningMethod == jwt.MethodHS256 {
		jc.PrivateKey = []byte(cfg.VerifyKey)
	} else {
		jc.PublicKey = []byte(cfg.VerifyKey)
	}
	return jwt.NewManager(jc)
}

// backendName labels the backend actually in use, injected or opened.
func backendName(backend session.Backend) string {
	switch backend.(type) {
	case nil:
		return ""
	case *session.MemoryBackend:
		return BackendMemory
	case *session.RedisBackend, *ownedRedisBackend:
		return BackendRedis
	case *session.SQLiteBackend:
		return BackendSQLite
	default:
		return fmt.Sprintf("%T", backend)
	}
}
