// Package runner orchestrates one campaign pass: load progress, plan the
// remaining launches, dispatch them against the wallet pool, record every
// completion durably.
package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"mintbot/internal/launch"
	"mintbot/internal/notifier"
	"mintbot/internal/retry"
	"mintbot/internal/schedule"
	"mintbot/internal/state"
	"mintbot/internal/storage"
	"mintbot/internal/wallet"
	logx "mintbot/pkg/logx"
)

const defaultLockPoll = 250 * time.Millisecond

// Params shapes the campaign.
type Params struct {
	// TotalTokens is the lifetime launch count; progress already recorded
	// counts against it, so a restart only schedules the remainder.
	TotalTokens int
	Duration    time.Duration
	Mode        schedule.Mode
	Randomness  float64
	// SellPercent in [0,100]; 0 skips the sell step.
	SellPercent float64
	RetryMax    int
	RetryBase   time.Duration
}

// Deps are the runner's collaborators. Store and Launcher are required;
// Audit and Notify may be nil.
type Deps struct {
	Wallets  []wallet.Wallet
	Pool     []launch.TokenMeta
	Store    *state.Store
	Launcher launch.Launcher
	Audit    storage.Store
	Notify   *notifier.Service
	Log      logx.Logger
}

// Summary is the run-level outcome. Per-task failures are logged and
// audited; they never abort sibling tasks.
type Summary struct {
	RunID      string
	Dispatched int
	Succeeded  int
	Failed     int
	Took       time.Duration
}

type Runner struct {
	params   Params
	wallets  []wallet.Wallet
	pool     []launch.TokenMeta
	locks    *wallet.LockTable
	store    *state.Store
	launcher launch.Launcher
	retrier  *retry.Executor
	audit    storage.Store
	notify   *notifier.Service
	log      logx.Logger

	// lockPoll is the wallet-busy re-check interval. Tasks poll forever:
	// wallets are never added or removed mid-run, so the lock always
	// frees eventually.
	lockPoll time.Duration
}

func New(p Params, deps Deps) (*Runner, error) {
	if p.TotalTokens < 1 {
		return nil, errors.New("runner: total tokens must be >= 1")
	}
	if p.Duration <= 0 {
		return nil, errors.New("runner: duration must be > 0")
	}
	if len(deps.Wallets) == 0 {
		return nil, errors.New("runner: wallet pool is empty")
	}
	if len(deps.Pool) == 0 {
		return nil, launch.ErrNoTokens
	}
	if deps.Store == nil {
		return nil, errors.New("runner: state store is required")
	}
	if deps.Launcher == nil {
		return nil, errors.New("runner: launcher is required")
	}
	log := deps.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Runner{
		params:   p,
		wallets:  deps.Wallets,
		pool:     deps.Pool,
		locks:    wallet.NewLockTable(len(deps.Wallets)),
		store:    deps.Store,
		launcher: deps.Launcher,
		retrier:  retry.New(log),
		audit:    deps.Audit,
		notify:   deps.Notify,
		log:      log,
		lockPoll: defaultLockPoll,
	}, nil
}

// Run executes one campaign pass and returns its summary.
//
// Only two conditions are run-fatal: an unreadable progress record and a
// planner input error. Everything else degrades to per-task failures.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	runID := uuid.NewString()[:8]
	log := r.log.With(logx.String("run", runID))
	start := time.Now()

	prog, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	// Anchor the campaign window on first run; restarts reuse the stored
	// timestamp so the schedule does not stretch.
	if prog.StartedAt.IsZero() {
		anchor := start
		err := r.store.Update(func(p *state.Progress) error {
			if p.StartedAt.IsZero() {
				p.StartedAt = anchor
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("runner: anchor start time: %w", err)
		}
		if prog, err = r.store.Load(); err != nil {
			return nil, err
		}
	}

	remaining := r.params.TotalTokens - prog.TokensCreated
	if remaining <= 0 {
		log.Info("campaign already complete",
			logx.Int("tokens_created", prog.TokensCreated),
			logx.Int("total", r.params.TotalTokens))
		return &Summary{RunID: runID, Took: time.Since(start)}, nil
	}

	tasks, err := schedule.Plan(schedule.Input{
		Count:      remaining,
		Duration:   r.params.Duration,
		Wallets:    len(r.wallets),
		Pool:       r.pool,
		Start:      prog.StartedAt,
		Mode:       r.params.Mode,
		Randomness: r.params.Randomness,
	})
	if err != nil {
		return nil, err
	}

	log.Info("campaign pass starting",
		logx.Int("remaining", remaining),
		logx.Int("total", r.params.TotalTokens),
		logx.Int("wallets", len(r.wallets)),
		logx.String("mode", string(effectiveMode(r.params.Mode))),
		logx.Duration("window", r.params.Duration))
	r.notify.RunStarted(runID, remaining, r.params.TotalTokens, r.params.Duration)

	var succeeded, failed, dispatched int
	if effectiveMode(r.params.Mode) == schedule.ModeConcurrent {
		dispatched, succeeded, failed = r.dispatchConcurrent(ctx, runID, log, tasks)
	} else {
		dispatched, succeeded, failed = r.dispatchSequential(ctx, runID, log, tasks)
	}

	sum := &Summary{
		RunID:      runID,
		Dispatched: dispatched,
		Succeeded:  succeeded,
		Failed:     failed,
		Took:       time.Since(start),
	}
	log.Info("campaign pass finished",
		logx.Int("dispatched", sum.Dispatched),
		logx.Int("succeeded", sum.Succeeded),
		logx.Int("failed", sum.Failed),
		logx.Duration("took", sum.Took))
	r.notify.RunFinished(runID, succeeded, failed, sum.Took)
	return sum, nil
}

func effectiveMode(m schedule.Mode) schedule.Mode {
	if m == schedule.ModeConcurrent {
		return schedule.ModeConcurrent
	}
	return schedule.ModeSequential
}

// dispatchSequential runs tasks one at a time in scheduled-time order.
// A failed task never blocks the next one.
func (r *Runner) dispatchSequential(ctx context.Context, runID string, log logx.Logger, tasks []schedule.Task) (dispatched, succeeded, failed int) {
	ordered := make([]schedule.Task, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].At.Before(ordered[j].At) })

	for _, t := range ordered {
		if ctx.Err() != nil {
			log.Warn("dispatch aborted, run context done", logx.Int("undispatched", len(ordered)-dispatched))
			return
		}
		dispatched++
		if r.dispatchOne(ctx, runID, log, t) {
			succeeded++
		} else {
			failed++
		}
	}
	return
}

// dispatchConcurrent starts every task at once; each runs its own
// wait/lock/execute sequence. Outcomes are aggregated without the first
// failure aborting the rest.
func (r *Runner) dispatchConcurrent(ctx context.Context, runID string, log logx.Logger, tasks []schedule.Task) (dispatched, succeeded, failed int) {
	var mu sync.Mutex
	var wg sync.WaitGroup

	dispatched = len(tasks)
	wg.Add(len(tasks))
	for _, t := range tasks {
		t := t
		go func() {
			defer wg.Done()
			ok := false
			func() {
				defer func() {
					if rec := recover(); rec != nil {
						log.Error("panic in task",
							logx.Int("seq", t.Seq),
							logx.Any("panic", rec),
							logx.String("stack", string(debug.Stack())))
					}
				}()
				ok = r.dispatchOne(ctx, runID, log, t)
			}()
			mu.Lock()
			if ok {
				succeeded++
			} else {
				failed++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	return
}

// dispatchOne drives a single task to a terminal state and reports success.
func (r *Runner) dispatchOne(ctx context.Context, runID string, log logx.Logger, t schedule.Task) bool {
	start := time.Now()
	tlog := log.With(
		logx.Int("seq", t.Seq),
		logx.Int("wallet", t.WalletIndex),
		logx.String("symbol", t.Token.Symbol))

	mint, sellSig, err := r.runTask(ctx, tlog, t)
	took := time.Since(start)

	entry := storage.LaunchEntry{
		At:          time.Now(),
		RunID:       runID,
		Seq:         t.Seq,
		WalletIndex: t.WalletIndex,
		Mint:        mint,
		Name:        t.Token.Name,
		Symbol:      t.Token.Symbol,
		SellSig:     sellSig,
		OK:          err == nil,
		TookMS:      took.Milliseconds(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if r.audit != nil {
		if aerr := r.audit.AppendLaunch(ctx, entry); aerr != nil {
			tlog.Warn("audit append failed", logx.Err(aerr))
		}
	}

	if err != nil {
		tlog.Warn("task failed", logx.Err(err), logx.Duration("took", took))
		r.notify.LaunchFailed(runID, t.Seq, err)
		return false
	}
	tlog.Info("task completed", logx.String("mint", mint), logx.Duration("took", took))
	return true
}

// runTask is the per-task state machine: wait for the scheduled time, wait
// for the wallet, create, optionally sell (with retry), commit progress.
// The wallet lock is released on every path out of the running section.
func (r *Runner) runTask(ctx context.Context, log logx.Logger, t schedule.Task) (mint, sellSig string, err error) {
	if d := time.Until(t.At); d > 0 {
		log.Debug("waiting for scheduled time", logx.Duration("wait", d))
		if err := sleepCtx(ctx, d); err != nil {
			return "", "", err
		}
	}

	if !r.locks.TryAcquire(t.WalletIndex) {
		log.Debug("wallet busy, polling")
		for {
			if err := sleepCtx(ctx, r.lockPoll); err != nil {
				return "", "", err
			}
			if r.locks.TryAcquire(t.WalletIndex) {
				break
			}
		}
	}
	defer r.locks.Release(t.WalletIndex)

	w := r.wallets[t.WalletIndex]

	// The create step is deliberately not retried: if the first attempt
	// landed on-chain but the success signal was lost, a retry would mint
	// a duplicate token.
	res, err := r.launcher.CreateToken(ctx, w, t.Token)
	if err != nil {
		return "", "", fmt.Errorf("create: %w", err)
	}
	mint = res.Mint

	if r.params.SellPercent > 0 {
		amount := uint64(float64(res.Amount) * r.params.SellPercent / 100)
		if amount > 0 {
			err = r.retrier.Do(ctx, "sell "+mint, r.params.RetryMax, r.params.RetryBase, func(ctx context.Context) error {
				sig, serr := r.launcher.SellTokens(ctx, w, mint, amount)
				if serr == nil {
					sellSig = sig
				}
				return serr
			})
			if err != nil {
				return mint, "", err
			}
		}
	}

	now := time.Now()
	err = r.store.Update(func(p *state.Progress) error {
		p.TokensCreated++
		p.LastCompletedAt = now
		p.Completed = append(p.Completed, state.CompletedLaunch{
			Mint:        mint,
			Token:       t.Token,
			CompletedAt: now,
			WalletIndex: t.WalletIndex,
		})
		return nil
	})
	if err != nil {
		return mint, sellSig, fmt.Errorf("record completion: %w", err)
	}
	return mint, sellSig, nil
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
