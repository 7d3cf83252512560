package storage

import (
	"context"
	"errors"
	"strings"

	logx "mintbot/pkg/logx"
)

// Store is the audit API used by the runner and the status command.
type Store interface {
	AppendLaunch(ctx context.Context, e LaunchEntry) error
	RecentLaunches(ctx context.Context, limit int) ([]LaunchEntry, error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if auditing is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown audit driver: " + driver)
	}
}
