// Package notifier pushes campaign events to a Telegram chat so an
// operator does not have to tail logs during a multi-hour run.
package notifier

import (
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
	"golang.org/x/time/rate"

	logx "mintbot/pkg/logx"
)

type Config struct {
	Enabled    bool
	Token      string
	ChatID     int64
	RatePerSec int
}

// Service is a send-only Telegram client. A nil *Service is valid and
// drops everything, so callers never need to branch on "notifier
// configured?".
type Service struct {
	log     logx.Logger
	bot     *tele.Bot
	chat    tele.ChatID
	limiter *rate.Limiter
}

func New(cfg Config, log logx.Logger) (*Service, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("notifier: token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, fmt.Errorf("notifier: chat_id is not set")
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}

	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		log:     log,
		bot:     b,
		chat:    tele.ChatID(cfg.ChatID),
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

func (s *Service) RunStarted(runID string, remaining, total int, window time.Duration) {
	s.send(fmt.Sprintf("mintbot run %s started: %d of %d launches remaining over %s", runID, remaining, total, window))
}

func (s *Service) LaunchFailed(runID string, seq int, err error) {
	s.send(fmt.Sprintf("mintbot run %s: task %d failed: %v", runID, seq, err))
}

func (s *Service) RunFinished(runID string, succeeded, failed int, took time.Duration) {
	s.send(fmt.Sprintf("mintbot run %s finished: %d succeeded, %d failed, took %s", runID, succeeded, failed, took.Round(time.Second)))
}

func (s *Service) send(msg string) {
	if s == nil || s.bot == nil {
		return
	}
	// Notifications are best-effort: drop on rate limit rather than block
	// the scheduler, and log (not propagate) send failures.
	if !s.limiter.Allow() {
		s.log.Debug("notification dropped (rate limit)")
		return
	}
	if _, err := s.bot.Send(s.chat, msg); err != nil {
		s.log.Warn("notification send failed", logx.Err(err))
	}
}
