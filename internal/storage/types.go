package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("audit storage disabled")

// Config configures the audit store.
//
// Driver values:
//   - "file": append-only JSON Lines
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", auditing is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// LaunchEntry records one terminal task outcome.
// Keep it compact and schema-stable.
type LaunchEntry struct {
	At          time.Time
	RunID       string
	Seq         int
	WalletIndex int
	Mint        string
	Name        string
	Symbol      string
	SellSig     string
	OK          bool
	Error       string
	TookMS      int64
}
