package state

import (
	"time"

	"mintbot/internal/launch"
)

// CompletedLaunch is one committed create(+sell) job.
type CompletedLaunch struct {
	Mint        string           `json:"mint"`
	Token       launch.TokenMeta `json:"token"`
	CompletedAt time.Time        `json:"completed_at"`
	WalletIndex int              `json:"wallet_index"`
}

// Progress is the single durable record of a campaign.
//
// Invariant: TokensCreated == len(Completed) after every committed update.
// StartedAt is set exactly once, on the campaign's first run, and anchors
// the schedule across restarts.
type Progress struct {
	TokensCreated   int               `json:"tokens_created"`
	StartedAt       time.Time         `json:"started_at"`
	LastCompletedAt time.Time         `json:"last_completed_at,omitempty"`
	Completed       []CompletedLaunch `json:"completed"`
}

func emptyProgress() *Progress {
	return &Progress{Completed: []CompletedLaunch{}}
}
