package goSession

import (
	"context"
	"strconv"
	"time"

	"github.com/MrEthical07/goSession/activity"
	"go.uber.org/zap"
)

// Begin records the start of a tracked operation and returns its handle.
// Every Begin must be paired with exactly one [Engine.End].
func (e *Engine) Begin() Handle {
	if e == nil || e.activity == nil {
		return Handle{}
	}
	return e.activity.Begin()
}

// End records the completion of the operation identified by h. Ending a
// handle that is not outstanding returns [ErrHandleNotOutstanding] and leaves
// the count unchanged.
func (e *Engine) End(h Handle) error {
	if e == nil || e.activity == nil {
		return ErrEngineNotReady
	}
	return e.activity.End(h)
}

// IsBusy reports whether at least one tracked operation is outstanding.
func (e *Engine) IsBusy() bool {
	return e != nil && e.activity != nil && e.activity.IsBusy()
}

// ActivityCount returns the number of outstanding tracked operations.
func (e *Engine) ActivityCount() int {
	if e == nil || e.activity == nil {
		return 0
	}
	return e.activity.Count()
}

// Track runs fn as one tracked operation. The operation ends when fn returns,
// whether it succeeds, fails or panics.
func (e *Engine) Track(ctx context.Context, fn func(ctx context.Context) error) error {
	if e == nil || e.activity == nil {
		return ErrEngineNotReady
	}
	return e.activity.Track(ctx, fn)
}

// Acquire begins a tracked operation owned by the returned lease.
func (e *Engine) Acquire() *Lease {
	if e == nil || e.activity == nil {
		return nil
	}
	return e.activity.Acquire()
}

// OnBusyChange subscribes fn to idle/busy transitions. fn is called once per
// transition, in order, never for count changes that keep the busy state.
func (e *Engine) OnBusyChange(fn func(busy bool)) (unsubscribe func()) {
	if e == nil || e.activity == nil || fn == nil {
		return func() {}
	}
	return e.activity.OnChange(fn)
}

func (e *Engine) onActivityBegin(activity.Handle) {
	e.metricInc(MetricActivityBegin)
}

func (e *Engine) onActivityEnd(h activity.Handle, d time.Duration) {
	e.metricInc(MetricActivityEnd)
	e.metrics.Observe(MetricActivityDuration, d)

	threshold := e.config.Activity.SlowOperationThreshold
	if threshold <= 0 || d <= threshold {
		return
	}
	e.metricInc(MetricActivitySlow)
	e.log.Warn("tracked operation slow",
		zap.Stringer("handle", h),
		zap.Duration("duration", d),
		zap.Duration("threshold", threshold),
	)
	e.emitAudit(context.Background(), auditEventActivitySlow, false, e.Snapshot(), "", nil, func() map[string]string {
		return map[string]string{
			"handle":      h.String(),
			"duration_ms": formatMillis(d),
		}
	})
}

func (e *Engine) onActivityMisuse(h activity.Handle) {
	e.metricInc(MetricActivityMisuse)
	e.emitAudit(context.Background(), auditEventActivityMisuse, false, e.Snapshot(), "", ErrHandleNotOutstanding, func() map[string]string {
		return map[string]string{"handle": h.String()}
	})
}

func formatMillis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}
