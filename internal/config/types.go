package config

// Config is the full mintbot configuration.
//
// Loading is strict: unknown fields are rejected so typos surface at startup
// instead of silently running with defaults. YAML and JSON are both accepted
// (YAML is coerced to JSON before decoding).
type Config struct {
	// Network selects the target cluster: "mainnet" or "devnet".
	Network string `json:"network"`

	Logging  LoggingConfig  `json:"logging"`
	Campaign CampaignConfig `json:"campaign"`
	Wallets  WalletsConfig  `json:"wallets"`
	Tokens   TokensConfig   `json:"tokens"`
	State    StateConfig    `json:"state"`
	Trade    TradeConfig    `json:"trade"`

	Audit    *AuditConfig    `json:"audit,omitempty"`
	Notifier *NotifierConfig `json:"notifier,omitempty"`
	Trigger  *TriggerConfig  `json:"trigger,omitempty"`
}

type LoggingConfig struct {
	Level   string            `json:"level"`
	Console bool              `json:"console"`
	File    LoggingFileConfig `json:"file,omitempty"`
}

type LoggingFileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// CampaignConfig shapes one launch campaign.
//
// All durations are Go duration strings (e.g. "500ms", "45m", "2h").
//
// Defaults (when fields are omitted/zero):
//   - mode: "sequential"
//   - randomness: 0
//   - sell_percent: 0 (create only, never sell)
//   - retry_max: 3
//   - retry_base: "2s"
type CampaignConfig struct {
	// TotalTokens is the lifetime number of launches for this campaign,
	// across restarts. Progress already recorded in the state file counts
	// against it.
	TotalTokens int `json:"total_tokens"`

	// Duration spreads the launches over this wall-clock window,
	// anchored at the campaign's first start.
	Duration string `json:"duration"`

	// Mode is "sequential" or "concurrent".
	Mode string `json:"mode,omitempty"`

	// Randomness perturbs sequential-mode spacing, as a fraction in [0,1].
	// Ignored in concurrent mode (offsets there are fully random already).
	Randomness float64 `json:"randomness,omitempty"`

	// SellPercent in [0,100]: portion of each mint to sell right after
	// creation. 0 disables the sell step entirely.
	SellPercent float64 `json:"sell_percent,omitempty"`

	RetryMax  int    `json:"retry_max,omitempty"`
	RetryBase string `json:"retry_base,omitempty"`
}

type WalletsConfig struct {
	// KeysFile lists the wallet pool (one entry per wallet, index order).
	KeysFile string `json:"keys_file"`

	// PoolSize optionally caps the pool to the first N wallets of the keys
	// file. 0 (or omitted) uses every wallet listed.
	PoolSize int `json:"pool_size,omitempty"`
}

type TokensConfig struct {
	// PoolFile lists candidate token metadata; the planner samples from it
	// with replacement, so it may be smaller than total_tokens.
	PoolFile string `json:"pool_file"`
}

type StateConfig struct {
	// Path of the durable progress record (JSON).
	Path string `json:"path"`
}

type TradeConfig struct {
	// Endpoint of the trade API used to build/submit transactions.
	Endpoint string `json:"endpoint"`

	// RatePerSec caps outbound trade-API requests. Default 2.
	RatePerSec int `json:"rate_per_sec,omitempty"`

	// Timeout is a Go duration string per request. Default "30s".
	Timeout string `json:"timeout,omitempty"`
}

// AuditConfig controls the optional launch audit log.
//
// Driver values:
//   - "file": append-only JSON Lines
//   - "sqlite": SQLite database file
//
// If the section or driver is empty, auditing is disabled.
type AuditConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// NotifierConfig controls optional Telegram operator notifications.
type NotifierConfig struct {
	Enabled    bool   `json:"enabled"`
	Token      string `json:"token"`
	ChatID     int64  `json:"chat_id"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}

// TriggerConfig makes `mintbot run` recurring: each firing of the cron spec
// starts a campaign pass (which is a no-op once the campaign is complete).
// Without this section the campaign runs exactly once.
type TriggerConfig struct {
	// Spec accepts 5-field cron, 6-field cron with seconds, or descriptors
	// like "@daily" and "@every 6h".
	Spec     string `json:"spec"`
	Timezone string `json:"timezone,omitempty"` // IANA TZ, e.g. "Asia/Jakarta"
}
