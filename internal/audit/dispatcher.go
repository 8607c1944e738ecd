package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultDrainTimeout bounds how long Close waits for queued events.
const DefaultDrainTimeout = 5 * time.Second

// Config controls dispatcher buffering.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// DrainTimeout bounds Close. Zero means DefaultDrainTimeout.
	DrainTimeout time.Duration
}

// Dispatcher forwards events to a sink from one background goroutine.
//
// Every sink call receives the dispatcher context. Close cancels it once the
// queue is drained or DrainTimeout elapses, so a sink that honours its
// context cannot hold Close. Events still queued after the timeout are
// counted as dropped. A nil *Dispatcher is valid and discards everything.
type Dispatcher struct {
	cfg    Config
	sink   Sink
	queue  chan Event
	stop   chan struct{}
	exited chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	dropped   atomic.Uint64
	delivered atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts a dispatcher, or returns nil when cfg is disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = DefaultDrainTimeout
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		cfg:    cfg,
		sink:   sink,
		queue:  make(chan Event, cfg.BufferSize),
		stop:   make(chan struct{}),
		exited: make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	defer close(d.exited)

	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		case <-d.stop:
			for {
				select {
				case event := <-d.queue:
					d.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(event Event) {
	if d.ctx.Err() != nil {
		d.dropped.Add(1)
		return
	}
	d.sink.Emit(d.ctx, event)
	d.delivered.Add(1)
}

// Emit queues event. With DropIfFull a full buffer drops the event and
// counts it; otherwise Emit blocks until there is room, ctx ends or the
// dispatcher closes.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.queue <- event:
		case <-d.stop:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.stop:
	}
}

// Close stops accepting events and drains the queue for at most
// DrainTimeout. It reports whether the drain finished in time.
func (d *Dispatcher) Close() bool {
	if d == nil {
		return true
	}

	drained := true
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.stop)

		timer := time.NewTimer(d.cfg.DrainTimeout)
		defer timer.Stop()

		select {
		case <-d.exited:
		case <-timer.C:
			drained = false
		}
		d.cancel()
	})
	return drained
}

// Dropped returns the number of events discarded by a full buffer or an
// expired drain.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Delivered returns the number of events handed to the sink.
func (d *Dispatcher) Delivered() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}
