// Package retry wraps flaky operations with bounded, linear-backoff retry.
package retry

import (
	"context"
	"fmt"
	"time"

	logx "mintbot/pkg/logx"
)

// ExhaustedError reports that every attempt failed. It wraps the last
// underlying error so callers keep the original detail.
type ExhaustedError struct {
	Label    string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: giving up after %d attempts: %v", e.Label, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Executor retries operations it knows nothing about. Backoff is linear:
// after failed attempt n it sleeps base*n before attempt n+1 (attempts are
// numbered from 1). Exponential growth buys nothing here; the flaky
// operations are short RPCs and the campaign window dominates.
type Executor struct {
	log logx.Logger

	// sleep is swapped in tests to observe the delay sequence.
	sleep func(ctx context.Context, d time.Duration) error
}

func New(log logx.Logger) *Executor {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Executor{log: log, sleep: sleepCtx}
}

// Do invokes op up to maxAttempts times. It returns nil on the first
// success; results travel through the op closure. On exhaustion it returns
// an *ExhaustedError wrapping the last failure.
func (e *Executor) Do(ctx context.Context, label string, maxAttempts int, base time.Duration, op func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var last error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		last = op(ctx)
		if last == nil {
			if attempt > 1 {
				e.log.Debug("operation recovered", logx.String("op", label), logx.Int("attempt", attempt))
			}
			return nil
		}
		if attempt == maxAttempts {
			break
		}

		delay := base * time.Duration(attempt)
		e.log.Warn("operation failed, will retry",
			logx.String("op", label),
			logx.Int("attempt", attempt),
			logx.Int("max_attempts", maxAttempts),
			logx.Duration("delay", delay),
			logx.Err(last))
		if err := e.sleep(ctx, delay); err != nil {
			// Process is going down; surface the last real failure.
			return &ExhaustedError{Label: label, Attempts: attempt, Last: last}
		}
	}
	return &ExhaustedError{Label: label, Attempts: maxAttempts, Last: last}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
