package activity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrHandleNotOutstanding is returned by [Coordinator.End] for a handle that
// was already ended or was never issued by this coordinator.
var ErrHandleNotOutstanding = errors.New("activity handle not outstanding")

// Handle identifies one in-flight operation.
type Handle struct {
	id uuid.UUID
}

// ID returns the handle identifier.
func (h Handle) ID() uuid.UUID { return h.id }

// IsZero reports whether h was never issued.
func (h Handle) IsZero() bool { return h.id == uuid.Nil }

func (h Handle) String() string { return h.id.String() }

// Option configures a [Coordinator].
type Option func(*Coordinator)

// WithLogger sets the logger used for misuse warnings.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMisuseHook registers fn to run after a rejected [Coordinator.End].
func WithMisuseHook(fn func(Handle)) Option {
	return func(c *Coordinator) { c.onMisuse = fn }
}

// WithBeginHook registers fn to run after every [Coordinator.Begin].
func WithBeginHook(fn func(Handle)) Option {
	return func(c *Coordinator) { c.onBegin = fn }
}

// WithEndHook registers fn to run after every accepted [Coordinator.End] with
// the operation's lifetime.
func WithEndHook(fn func(Handle, time.Duration)) Option {
	return func(c *Coordinator) { c.onEnd = fn }
}

// Coordinator is the single owner of the activity count.
type Coordinator struct {
	log      *zap.Logger
	onMisuse func(Handle)
	onBegin  func(Handle)
	onEnd    func(Handle, time.Duration)

	mu          sync.Mutex
	outstanding map[uuid.UUID]time.Time
	count       atomic.Int64

	// notifyMu is taken before mu is released so listeners see busy
	// transitions in the order they happened.
	notifyMu  sync.Mutex
	listeners map[uint64]func(busy bool)
	nextID    uint64
}

// New returns an idle coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		log:         zap.NewNop(),
		outstanding: make(map[uuid.UUID]time.Time),
		listeners:   make(map[uint64]func(bool)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Begin records a new in-flight operation and returns its handle.
func (c *Coordinator) Begin() Handle {
	h := Handle{id: uuid.New()}

	c.mu.Lock()
	c.outstanding[h.id] = time.Now()
	became := c.count.Add(1) == 1
	c.handOff(became, true)

	if c.onBegin != nil {
		c.onBegin(h)
	}
	return h
}

// End completes the operation identified by h. Each handle ends at most once.
func (c *Coordinator) End(h Handle) error {
	c.mu.Lock()
	started, ok := c.outstanding[h.id]
	if !ok {
		c.mu.Unlock()
		c.log.Warn("activity end without matching begin",
			zap.String("handle", h.String()),
			zap.Int64("outstanding", c.count.Load()),
		)
		if c.onMisuse != nil {
			c.onMisuse(h)
		}
		return fmt.Errorf("%w: %s", ErrHandleNotOutstanding, h)
	}
	delete(c.outstanding, h.id)
	became := c.count.Add(-1) == 0
	c.handOff(became, false)

	if c.onEnd != nil {
		c.onEnd(h, time.Since(started))
	}
	return nil
}

// handOff releases mu. When the busy state flipped it notifies listeners
// while holding notifyMu, acquired before mu is released.
func (c *Coordinator) handOff(flipped, busy bool) {
	if !flipped {
		c.mu.Unlock()
		return
	}
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	for _, fn := range c.listeners {
		fn(busy)
	}
}

// IsBusy reports whether at least one operation is outstanding.
func (c *Coordinator) IsBusy() bool {
	return c.count.Load() > 0
}

// Count returns the number of outstanding operations.
func (c *Coordinator) Count() int {
	return int(c.count.Load())
}

// OnChange registers fn for busy transitions. fn runs synchronously on the
// goroutine that caused the transition and must not call Begin, End or
// OnChange. The returned func unregisters fn.
func (c *Coordinator) OnChange(fn func(busy bool)) (unsubscribe func()) {
	c.notifyMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.notifyMu.Lock()
			delete(c.listeners, id)
			c.notifyMu.Unlock()
		})
	}
}

// Lease is a scoped acquisition of one activity slot.
type Lease struct {
	c      *Coordinator
	handle Handle
	once   sync.Once

	mu   sync.Mutex
	stop func() bool
}

// Acquire begins an operation and returns a lease that ends it.
func (c *Coordinator) Acquire() *Lease {
	return &Lease{c: c, handle: c.Begin()}
}

// Handle returns the underlying handle.
func (l *Lease) Handle() Handle { return l.handle }

// Release ends the operation. Only the first call has an effect.
func (l *Lease) Release() {
	l.once.Do(func() {
		l.mu.Lock()
		stop := l.stop
		l.mu.Unlock()
		if stop != nil {
			stop()
		}
		_ = l.c.End(l.handle)
	})
}

// ReleaseOnDone releases the lease when ctx is done, covering callers that
// abandon the operation. An explicit Release still works and detaches the
// context watch.
func (l *Lease) ReleaseOnDone(ctx context.Context) {
	stop := context.AfterFunc(ctx, l.Release)
	l.mu.Lock()
	l.stop = stop
	l.mu.Unlock()
}

// Track runs fn as a tracked operation. The operation ends when fn returns or
// panics. If ctx is already done fn is not run.
func (c *Coordinator) Track(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lease := c.Acquire()
	defer lease.Release()
	return fn(ctx)
}
