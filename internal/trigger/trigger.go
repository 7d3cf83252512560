// Package trigger decides when campaign passes run: once, or on a cron
// schedule for recurring top-up runs.
package trigger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mintbot/internal/schedule"
	"mintbot/internal/state"
	logx "mintbot/pkg/logx"
)

type Config struct {
	// Spec is a cron expression (5-field, 6-field with seconds, or a
	// descriptor like "@daily" / "@every 6h"). Empty means run once.
	Spec     string
	Timezone string
}

// Run executes pass according to cfg. With no spec it calls pass once and
// returns its error. With a spec it fires pass on the schedule until ctx is
// done; a firing that arrives while the previous pass is still running is
// skipped, never queued.
//
// A run-fatal pass error (corrupt progress record, invalid plan input)
// stops the schedule and is returned: re-firing against a broken state file
// cannot succeed and would hide the failure from the operator. Any other
// pass error is logged and the schedule keeps firing.
func Run(ctx context.Context, cfg Config, log logx.Logger, pass func(ctx context.Context) error) error {
	spec := strings.TrimSpace(cfg.Spec)
	if spec == "" {
		return pass(ctx)
	}

	loc := time.Local
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			log.Warn("invalid timezone, falling back to Local", logx.String("tz", tz), logx.Err(err))
		} else {
			loc = l
		}
	}

	// SecondOptional allows both 5-field and 6-field (with seconds) cron specs.
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithLocation(loc))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	running := false
	var fatal error
	_, err := c.AddFunc(spec, func() {
		mu.Lock()
		if running || fatal != nil {
			mu.Unlock()
			log.Debug("trigger fired while pass still running; skipping")
			return
		}
		running = true
		mu.Unlock()
		defer func() {
			mu.Lock()
			running = false
			mu.Unlock()
		}()

		if err := pass(ctx); err != nil {
			if isRunFatal(err) {
				log.Error("campaign pass failed fatally; stopping trigger", logx.Err(err))
				mu.Lock()
				fatal = err
				mu.Unlock()
				cancel()
				return
			}
			log.Error("campaign pass failed", logx.Err(err))
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	log.Info("recurring trigger armed", logx.String("spec", spec), logx.String("tz", loc.String()))
	<-ctx.Done()
	<-c.Stop().Done()

	mu.Lock()
	defer mu.Unlock()
	return fatal
}

// isRunFatal reports whether a pass error means no future firing can
// succeed without operator intervention.
func isRunFatal(err error) bool {
	var corrupt *state.CorruptError
	var input *schedule.InputError
	return errors.As(err, &corrupt) || errors.As(err, &input)
}
