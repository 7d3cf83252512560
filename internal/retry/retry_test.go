package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	logx "mintbot/pkg/logx"
)

func newRecordingExecutor() (*Executor, *[]time.Duration) {
	e := New(logx.Nop())
	var delays []time.Duration
	e.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return e, &delays
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	t.Parallel()
	e, delays := newRecordingExecutor()

	calls := 0
	base := 100 * time.Millisecond
	err := e.Do(context.Background(), "sell", 3, base, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("rpc timeout")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	want := []time.Duration{base, 2 * base}
	if len(*delays) != len(want) {
		t.Fatalf("delays = %v, want %v", *delays, want)
	}
	for i := range want {
		if (*delays)[i] != want[i] {
			t.Fatalf("delay %d = %v, want %v (linear backoff)", i, (*delays)[i], want[i])
		}
	}
}

func TestDoImmediateSuccessNoDelay(t *testing.T) {
	t.Parallel()
	e, delays := newRecordingExecutor()
	err := e.Do(context.Background(), "sell", 5, time.Second, func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(*delays) != 0 {
		t.Fatalf("expected no delays, got %v", *delays)
	}
}

func TestDoExhausted(t *testing.T) {
	t.Parallel()
	e, delays := newRecordingExecutor()

	calls := 0
	underlying := errors.New("insufficient liquidity")
	err := e.Do(context.Background(), "sell", 3, 50*time.Millisecond, func(ctx context.Context) error {
		calls++
		return underlying
	})
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	var ex *ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("err = %v, want ExhaustedError", err)
	}
	if ex.Label != "sell" || ex.Attempts != 3 {
		t.Fatalf("unexpected ExhaustedError: %+v", ex)
	}
	if !errors.Is(err, underlying) {
		t.Fatal("ExhaustedError must wrap the last underlying error")
	}
	// No delay after the final attempt.
	if len(*delays) != 2 {
		t.Fatalf("delays = %v, want 2 entries", *delays)
	}
}

func TestDoCanceledDuringBackoff(t *testing.T) {
	t.Parallel()
	e := New(logx.Nop())
	e.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}
	underlying := errors.New("network down")
	err := e.Do(context.Background(), "sell", 4, time.Second, func(ctx context.Context) error {
		return underlying
	})
	var ex *ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("err = %v, want ExhaustedError", err)
	}
	if ex.Attempts != 1 {
		t.Fatalf("Attempts = %d, want 1 (stopped at first backoff)", ex.Attempts)
	}
	if !errors.Is(err, underlying) {
		t.Fatal("must preserve the underlying error, not the cancellation")
	}
}
