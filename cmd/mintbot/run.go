package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"mintbot/internal/config"
	"mintbot/internal/launch"
	"mintbot/internal/notifier"
	"mintbot/internal/pumpfun"
	"mintbot/internal/runner"
	"mintbot/internal/schedule"
	"mintbot/internal/state"
	"mintbot/internal/storage"
	"mintbot/internal/trigger"
	"mintbot/internal/wallet"
	logx "mintbot/pkg/logx"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the campaign (resumes where the state file left off)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCampaign()
	},
}

func runCampaign() error {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return err
	}

	svc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File:    logx.FileConfig{Enabled: cfg.Logging.File.Enabled, Path: cfg.Logging.File.Path},
	})
	defer svc.Close()
	mgr.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wallets, err := wallet.LoadPool(cfg.Wallets.KeysFile)
	if err != nil {
		return err
	}
	if n := cfg.Wallets.PoolSize; n > 0 {
		if n > len(wallets) {
			return fmt.Errorf("wallets.pool_size is %d but keys file lists only %d wallets", n, len(wallets))
		}
		wallets = wallets[:n]
	}
	pool, err := launch.LoadPool(cfg.Tokens.PoolFile)
	if err != nil {
		return err
	}
	log.Info("pools loaded",
		logx.Int("wallets", len(wallets)),
		logx.Int("tokens", len(pool)),
		logx.String("network", cfg.Network))

	store := state.NewStore(state.NewFileSubstrate(cfg.State.Path), log)

	audit, err := openAudit(cfg, log)
	if err != nil {
		return err
	}
	if audit != nil {
		defer audit.Close()
	}

	var notify *notifier.Service
	if cfg.Notifier != nil {
		notify, err = notifier.New(notifier.Config{
			Enabled:    cfg.Notifier.Enabled,
			Token:      cfg.Notifier.Token,
			ChatID:     cfg.Notifier.ChatID,
			RatePerSec: cfg.Notifier.RatePerSec,
		}, log)
		if err != nil {
			return err
		}
	}

	tradeTimeout, err := config.ParseDurationField("trade.timeout", cfg.Trade.Timeout)
	if err != nil {
		return err
	}
	client := pumpfun.New(pumpfun.Config{
		Endpoint:   cfg.Trade.Endpoint,
		Network:    cfg.Network,
		RatePerSec: cfg.Trade.RatePerSec,
		Timeout:    tradeTimeout,
	}, log)

	window, err := config.ParseDurationField("campaign.duration", cfg.Campaign.Duration)
	if err != nil {
		return err
	}
	r, err := runner.New(runner.Params{
		TotalTokens: cfg.Campaign.TotalTokens,
		Duration:    window,
		Mode:        schedule.Mode(cfg.Mode()),
		Randomness:  cfg.Campaign.Randomness,
		SellPercent: cfg.Campaign.SellPercent,
		RetryMax:    cfg.RetryMax(),
		RetryBase:   cfg.RetryBase(),
	}, runner.Deps{
		Wallets:  wallets,
		Pool:     pool,
		Store:    store,
		Launcher: client,
		Audit:    audit,
		Notify:   notify,
		Log:      log,
	})
	if err != nil {
		return err
	}

	// Hot-apply logging changes while the campaign runs. Campaign-shape
	// fields stay fixed for the life of the process.
	sub := mgr.Subscribe(1)
	defer mgr.Unsubscribe(sub)
	go func() {
		if err := mgr.Watch(ctx); err != nil {
			log.Warn("config watch stopped", logx.Err(err))
		}
	}()
	go func() {
		for next := range sub {
			svc.Apply(logx.Config{
				Level:   next.Logging.Level,
				Console: next.Logging.Console,
				File:    logx.FileConfig{Enabled: next.Logging.File.Enabled, Path: next.Logging.File.Path},
			})
			log.Info("logging config applied", logx.String("level", next.Logging.Level))
		}
	}()

	notifySystemd(ctx, log)
	defer func() { _, _ = daemon.SdNotify(false, daemon.SdNotifyStopping) }()

	// Totals across passes (one pass unless a trigger is configured).
	var mu sync.Mutex
	var dispatched, succeeded int

	trigCfg := trigger.Config{}
	if cfg.Trigger != nil {
		trigCfg = trigger.Config{Spec: cfg.Trigger.Spec, Timezone: cfg.Trigger.Timezone}
	}
	err = trigger.Run(ctx, trigCfg, log, func(ctx context.Context) error {
		sum, err := r.Run(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		dispatched += sum.Dispatched
		succeeded += sum.Succeeded
		mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		log.Warn("run interrupted by signal",
			logx.Int("dispatched", dispatched),
			logx.Int("succeeded", succeeded))
	}
	return runOutcome(ctx.Err() != nil, dispatched, succeeded)
}

// runOutcome maps run totals to the process exit. An operator interrupt is
// a clean stop, not a campaign failure; the zero-progress policy applies
// only to runs that were allowed to finish.
func runOutcome(interrupted bool, dispatched, succeeded int) error {
	if interrupted {
		return nil
	}
	if dispatched > 0 && succeeded == 0 {
		return errors.New("campaign made no progress: every dispatched task failed")
	}
	return nil
}

func openAudit(cfg *config.Config, log logx.Logger) (storage.Store, error) {
	if cfg.Audit == nil {
		return nil, nil
	}
	busy, err := config.ParseDurationField("audit.busy_timeout", cfg.Audit.BusyTimeout)
	if err != nil {
		return nil, err
	}
	return storage.Open(storage.Config{
		Driver:      cfg.Audit.Driver,
		Path:        cfg.Audit.Path,
		BusyTimeout: busy,
	}, log)
}

// notifySystemd tells the service manager we are ready and feeds its
// watchdog if one is armed. Both are no-ops outside systemd.
func notifySystemd(ctx context.Context, log logx.Logger) {
	if ok, _ := daemon.SdNotify(false, daemon.SdNotifyReady); ok {
		log.Debug("systemd notified: ready")
	}
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval / 2)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			}
		}
	}()
}
