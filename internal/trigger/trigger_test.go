package trigger

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"mintbot/internal/state"
	logx "mintbot/pkg/logx"
)

func TestRunOnceWithoutSpec(t *testing.T) {
	t.Parallel()
	var calls int32
	err := Run(context.Background(), Config{}, logx.Nop(), func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("pass ran %d times, want 1", n)
	}
}

func TestRunOncePropagatesError(t *testing.T) {
	t.Parallel()
	want := errors.New("boom")
	err := Run(context.Background(), Config{}, logx.Nop(), func(ctx context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestRunRejectsInvalidSpec(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := Run(ctx, Config{Spec: "not a cron spec"}, logx.Nop(), func(ctx context.Context) error {
		t.Error("pass should never run with an invalid spec")
		return nil
	})
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRunRecurringFiresUntilContextDone(t *testing.T) {
	t.Parallel()
	var calls int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{Spec: "@every 50ms"}, logx.Nop(), func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}()

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&calls) == 0 {
		select {
		case <-deadline:
			t.Fatal("trigger never fired")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunRecurringContinuesAfterPassError(t *testing.T) {
	t.Parallel()
	var calls int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{Spec: "@every 50ms"}, logx.Nop(), func(ctx context.Context) error {
			if atomic.AddInt32(&calls, 1) == 1 {
				return errors.New("rpc timeout")
			}
			return nil
		})
	}()

	// cron's @every rounds sub-second intervals up to 1s, so the second
	// firing lands at ~2s; leave headroom beyond that.
	deadline := time.After(5 * time.Second)
	for atomic.LoadInt32(&calls) < 2 {
		select {
		case <-deadline:
			t.Fatalf("trigger stopped after a non-fatal pass error (calls=%d)", atomic.LoadInt32(&calls))
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunRecurringStopsOnCorruptState(t *testing.T) {
	t.Parallel()
	var calls int32
	want := &state.CorruptError{Err: errors.New("tokens_created=7 but 0 completed entries")}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := Run(ctx, Config{Spec: "@every 50ms"}, logx.Nop(), func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return want
	})

	var ce *state.CorruptError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want CorruptError", err)
	}
	if ctx.Err() != nil {
		t.Fatal("Run waited for the deadline instead of stopping on the fatal error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("pass ran %d times after a fatal error, want 1", n)
	}
}
