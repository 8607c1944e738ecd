package goSession

import (
	"sync"
	"sync/atomic"

	"github.com/MrEthical07/goSession/access"
	"github.com/MrEthical07/goSession/activity"
	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/session"
	"go.uber.org/zap"
)

// Engine owns one session store, one access configuration and one activity
// coordinator. Build it with [Builder.Build]; all methods are safe for
// concurrent use.
type Engine struct {
	config Config
	log    *zap.Logger

	backend     session.Backend
	ownsBackend bool
	store       *session.Store

	roles  *access.Roles
	routes *access.Routes
	dest   access.Destinations

	activity *activity.Coordinator
	tokens   *jwt.Manager

	audit   *internalaudit.Dispatcher
	metrics *Metrics

	loadMu   sync.RWMutex
	lastLoad LoadReport

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Close stops the audit dispatcher and closes the session backend when the
// engine opened it. Closing twice is harmless; later calls return the first
// result.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		if e.audit != nil && !e.audit.Close() && e.log != nil {
			e.log.Warn("audit drain timed out; queued events dropped",
				zap.Uint64("dropped", e.audit.Dropped()),
			)
		}
		if e.ownsBackend && e.backend != nil {
			e.closeErr = e.backend.Close()
		}
		if e.log != nil {
			_ = e.log.Sync()
		}
	})
	return e.closeErr
}

func (e *Engine) ready() error {
	if e == nil || e.store == nil || e.closed.Load() {
		return ErrEngineNotReady
	}
	return nil
}

// Config returns a copy of the configuration the engine was built with.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return cloneConfig(e.config)
}

// Logger returns the engine logger. It never returns nil.
func (e *Engine) Logger() *zap.Logger {
	if e == nil || e.log == nil {
		return zap.NewNop()
	}
	return e.log
}

// AuditDropped returns the number of audit events dropped because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of every counter and histogram.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}
