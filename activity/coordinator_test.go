package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestOverlappingOperationsKeepBusy(t *testing.T) {
	c := New()
	if c.IsBusy() {
		t.Fatal("new coordinator must be idle")
	}

	h1 := c.Begin()
	h2 := c.Begin()
	if err := c.End(h1); err != nil {
		t.Fatalf("end h1: %v", err)
	}
	if !c.IsBusy() {
		t.Fatal("busy must hold while h2 is outstanding")
	}
	if err := c.End(h2); err != nil {
		t.Fatalf("end h2: %v", err)
	}
	if c.IsBusy() || c.Count() != 0 {
		t.Fatalf("expected idle, count=%d", c.Count())
	}
}

func TestSecondFinisherFirstDoesNotHideOverlay(t *testing.T) {
	c := New()
	first := c.Begin()
	second := c.Begin()

	if err := c.End(second); err != nil {
		t.Fatalf("end second: %v", err)
	}
	if !c.IsBusy() {
		t.Fatal("overlay hidden while first operation still running")
	}
	if err := c.End(first); err != nil {
		t.Fatalf("end first: %v", err)
	}
	if c.IsBusy() {
		t.Fatal("expected idle")
	}
}

func TestDoubleEndIsRejected(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	var misused []Handle
	c := New(WithLogger(zap.New(core)), WithMisuseHook(func(h Handle) { misused = append(misused, h) }))

	h1 := c.Begin()
	h2 := c.Begin()
	if err := c.End(h1); err != nil {
		t.Fatalf("end h1: %v", err)
	}
	if err := c.End(h1); !errors.Is(err, ErrHandleNotOutstanding) {
		t.Fatalf("expected ErrHandleNotOutstanding, got %v", err)
	}
	if !c.IsBusy() || c.Count() != 1 {
		t.Fatalf("double end affected legitimate operation: count=%d", c.Count())
	}
	if err := c.End(h2); err != nil {
		t.Fatalf("end h2: %v", err)
	}
	if err := c.End(h2); !errors.Is(err, ErrHandleNotOutstanding) {
		t.Fatalf("expected ErrHandleNotOutstanding, got %v", err)
	}
	if c.Count() != 0 {
		t.Fatalf("count went to %d", c.Count())
	}

	if len(misused) != 2 || misused[0] != h1 || misused[1] != h2 {
		t.Fatalf("misuse hook saw %v", misused)
	}
	if logs.FilterMessage("activity end without matching begin").Len() != 2 {
		t.Fatalf("expected 2 misuse warnings, got %d", logs.Len())
	}
}

func TestEndWithoutBeginIsRejected(t *testing.T) {
	c := New()
	if err := c.End(Handle{}); !errors.Is(err, ErrHandleNotOutstanding) {
		t.Fatalf("zero handle: %v", err)
	}

	other := New()
	foreign := other.Begin()
	if err := c.End(foreign); !errors.Is(err, ErrHandleNotOutstanding) {
		t.Fatalf("foreign handle: %v", err)
	}
	if c.Count() != 0 || other.Count() != 1 {
		t.Fatalf("counts changed: %d %d", c.Count(), other.Count())
	}
}

func TestHooksReceiveLifetimes(t *testing.T) {
	var began int
	var ended []time.Duration
	c := New(
		WithBeginHook(func(Handle) { began++ }),
		WithEndHook(func(_ Handle, d time.Duration) { ended = append(ended, d) }),
	)

	h := c.Begin()
	time.Sleep(2 * time.Millisecond)
	_ = c.End(h)

	if began != 1 || len(ended) != 1 {
		t.Fatalf("hooks: began=%d ended=%d", began, len(ended))
	}
	if ended[0] < 2*time.Millisecond {
		t.Fatalf("duration too short: %v", ended[0])
	}
}

func TestOnChangeReportsTransitionsOnly(t *testing.T) {
	c := New()
	var got []bool
	unsubscribe := c.OnChange(func(busy bool) { got = append(got, busy) })

	h1 := c.Begin()
	h2 := c.Begin()
	_ = c.End(h1)
	_ = c.End(h2)
	_ = c.End(h2)

	want := []bool{true, false}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("transitions = %v, want %v", got, want)
	}

	unsubscribe()
	unsubscribe()
	_ = c.End(c.Begin())
	if len(got) != 2 {
		t.Fatalf("listener called after unsubscribe: %v", got)
	}
}

func TestOnChangeAlternatesUnderConcurrency(t *testing.T) {
	c := New()
	var mu sync.Mutex
	var seq []bool
	c.OnChange(func(busy bool) {
		mu.Lock()
		seq = append(seq, busy)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = c.End(c.Begin())
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i, busy := range seq {
		if busy != (i%2 == 0) {
			t.Fatalf("transition %d out of order: %v", i, seq[max(0, i-2):i+1])
		}
	}
	if len(seq) == 0 || seq[len(seq)-1] {
		t.Fatalf("final transition must be idle, got %d transitions", len(seq))
	}
}

func TestConcurrentBeginEndNeverNegative(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				h := c.Begin()
				if c.Count() < 1 {
					t.Errorf("count %d while holding a handle", c.Count())
					return
				}
				_ = c.End(h)
				_ = c.End(h)
			}
		}()
	}
	wg.Wait()
	if c.Count() != 0 || c.IsBusy() {
		t.Fatalf("final count %d", c.Count())
	}
}

func TestTrackEndsOnEveryExitPath(t *testing.T) {
	c := New()
	ctx := context.Background()

	if err := c.Track(ctx, func(context.Context) error {
		if !c.IsBusy() {
			t.Fatal("busy expected inside tracked operation")
		}
		return nil
	}); err != nil {
		t.Fatalf("track: %v", err)
	}

	boom := errors.New("boom")
	if err := c.Track(ctx, func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	func() {
		defer func() { _ = recover() }()
		_ = c.Track(ctx, func(context.Context) error { panic("fail") })
	}()

	if c.Count() != 0 {
		t.Fatalf("tracked operations leaked: count=%d", c.Count())
	}
}

func TestTrackSkipsCancelledContext(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := c.Track(ctx, func(context.Context) error { ran = true; return nil })
	if !errors.Is(err, context.Canceled) || ran {
		t.Fatalf("err=%v ran=%v", err, ran)
	}
	if c.Count() != 0 {
		t.Fatalf("count=%d", c.Count())
	}
}

func TestLeaseReleaseIsIdempotent(t *testing.T) {
	c := New()
	other := c.Begin()
	lease := c.Acquire()

	lease.Release()
	lease.Release()
	if c.Count() != 1 {
		t.Fatalf("count=%d, want 1", c.Count())
	}
	_ = c.End(other)
}

func TestLeaseReleasesOnAbandonment(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())

	lease := c.Acquire()
	lease.ReleaseOnDone(ctx)
	if !c.IsBusy() {
		t.Fatal("expected busy")
	}

	idle := make(chan struct{})
	c.OnChange(func(busy bool) {
		if !busy {
			close(idle)
		}
	})
	cancel()

	select {
	case <-idle:
	case <-time.After(2 * time.Second):
		t.Fatal("abandoned lease never released")
	}
	lease.Release()
	if c.Count() != 0 {
		t.Fatalf("count=%d", c.Count())
	}
}

func TestLeaseExplicitReleaseDetachesContext(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lease := c.Acquire()
	lease.ReleaseOnDone(ctx)
	lease.Release()

	next := c.Begin()
	cancel()
	time.Sleep(10 * time.Millisecond)
	if c.Count() != 1 {
		t.Fatalf("cancel after release touched other operations: count=%d", c.Count())
	}
	_ = c.End(next)
}
