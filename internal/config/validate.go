package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	ModeSequential = "sequential"
	ModeConcurrent = "concurrent"
)

const (
	defaultRetryMax  = 3
	defaultRetryBase = 2 * time.Second
)

// ParseDurationField parses a Go duration string from the config, keyed by
// its dotted path for error messages. Empty means unset (0); negative
// durations are rejected.
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// ParseDurationOrDefault substitutes def when the field is unset or zero.
func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

// Validate checks every recognized option against its allowed range.
// Any violation is a fatal configuration error; the caller should refuse
// to start.
func (c *Config) Validate() error {
	var errs []error

	switch strings.TrimSpace(c.Network) {
	case "mainnet", "devnet":
	case "":
		errs = append(errs, errors.New("network: required (mainnet or devnet)"))
	default:
		errs = append(errs, fmt.Errorf("network: unknown value %q", c.Network))
	}

	if c.Campaign.TotalTokens < 1 {
		errs = append(errs, errors.New("campaign.total_tokens: must be >= 1"))
	}
	if d, err := ParseDurationField("campaign.duration", c.Campaign.Duration); err != nil {
		errs = append(errs, err)
	} else if d <= 0 {
		errs = append(errs, errors.New("campaign.duration: must be > 0"))
	}
	switch mode := strings.TrimSpace(c.Campaign.Mode); mode {
	case "", ModeSequential, ModeConcurrent:
	default:
		errs = append(errs, fmt.Errorf("campaign.mode: must be %q or %q, got %q", ModeSequential, ModeConcurrent, mode))
	}
	if c.Campaign.Randomness < 0 || c.Campaign.Randomness > 1 {
		errs = append(errs, fmt.Errorf("campaign.randomness: must be in [0,1], got %v", c.Campaign.Randomness))
	}
	if c.Campaign.SellPercent < 0 || c.Campaign.SellPercent > 100 {
		errs = append(errs, fmt.Errorf("campaign.sell_percent: must be in [0,100], got %v", c.Campaign.SellPercent))
	}
	if c.Campaign.RetryMax < 0 {
		errs = append(errs, errors.New("campaign.retry_max: must be >= 0"))
	}
	if _, err := ParseDurationField("campaign.retry_base", c.Campaign.RetryBase); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(c.Wallets.KeysFile) == "" {
		errs = append(errs, errors.New("wallets.keys_file: required"))
	}
	if c.Wallets.PoolSize < 0 {
		errs = append(errs, errors.New("wallets.pool_size: must be >= 0"))
	}
	if strings.TrimSpace(c.Tokens.PoolFile) == "" {
		errs = append(errs, errors.New("tokens.pool_file: required"))
	}
	if strings.TrimSpace(c.State.Path) == "" {
		errs = append(errs, errors.New("state.path: required"))
	}
	if strings.TrimSpace(c.Trade.Endpoint) == "" {
		errs = append(errs, errors.New("trade.endpoint: required"))
	}
	if c.Trade.RatePerSec < 0 {
		errs = append(errs, errors.New("trade.rate_per_sec: must be >= 0"))
	}
	if _, err := ParseDurationField("trade.timeout", c.Trade.Timeout); err != nil {
		errs = append(errs, err)
	}

	if c.Audit != nil {
		switch strings.ToLower(strings.TrimSpace(c.Audit.Driver)) {
		case "", "none", "file", "sqlite", "sqlite3":
		default:
			errs = append(errs, fmt.Errorf("audit.driver: unknown driver %q", c.Audit.Driver))
		}
		if _, err := ParseDurationField("audit.busy_timeout", c.Audit.BusyTimeout); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Notifier != nil && c.Notifier.Enabled {
		if strings.TrimSpace(c.Notifier.Token) == "" {
			errs = append(errs, errors.New("notifier.token: required when notifier is enabled"))
		}
		if c.Notifier.ChatID == 0 {
			errs = append(errs, errors.New("notifier.chat_id: required when notifier is enabled"))
		}
	}
	if c.Trigger != nil && strings.TrimSpace(c.Trigger.Spec) == "" {
		errs = append(errs, errors.New("trigger.spec: required when trigger section is present"))
	}

	return errors.Join(errs...)
}

// Mode returns the effective campaign mode (default sequential).
func (c *Config) Mode() string {
	if strings.TrimSpace(c.Campaign.Mode) == ModeConcurrent {
		return ModeConcurrent
	}
	return ModeSequential
}

// RetryMax returns the effective sell-retry attempt count.
func (c *Config) RetryMax() int {
	if c.Campaign.RetryMax <= 0 {
		return defaultRetryMax
	}
	return c.Campaign.RetryMax
}

// RetryBase returns the effective sell-retry base delay.
func (c *Config) RetryBase() time.Duration {
	d, err := ParseDurationOrDefault("campaign.retry_base", c.Campaign.RetryBase, defaultRetryBase)
	if err != nil || d <= 0 {
		return defaultRetryBase
	}
	return d
}
