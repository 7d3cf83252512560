package state

import (
	"bytes"
	"encoding/json"
	"fmt"

	logx "mintbot/pkg/logx"
)

// CorruptError reports an unreadable on-disk record. It is fatal: resetting
// progress silently would re-run launches whose side effects already exist
// on-chain, so the operator has to inspect the file.
type CorruptError struct {
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("state: progress record is corrupt (refusing to reset automatically): %v", e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Store owns the durable progress record.
//
// All mutation goes through Update, which runs under a process-wide FIFO
// exclusive section: read the current on-disk record, apply the mutator,
// write the whole record back atomically. Concurrent completions therefore
// serialize instead of losing increments.
type Store struct {
	sub Substrate
	log logx.Logger

	mu fifoMutex
}

func NewStore(sub Substrate, log logx.Logger) *Store {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Store{sub: sub, log: log}
}

// Load returns the current record, or a fresh empty one if none exists yet.
func (s *Store) Load() (*Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (*Progress, error) {
	b, err := s.sub.Read()
	if err == ErrNotFound {
		return emptyProgress(), nil
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var p Progress
	if err := dec.Decode(&p); err != nil {
		return nil, &CorruptError{Err: err}
	}
	if p.Completed == nil {
		p.Completed = []CompletedLaunch{}
	}
	if p.TokensCreated != len(p.Completed) {
		return nil, &CorruptError{Err: fmt.Errorf("tokens_created=%d but %d completed entries", p.TokensCreated, len(p.Completed))}
	}
	return &p, nil
}

// Update applies mutate to the current on-disk record and persists the
// result, all inside the exclusive section. The on-disk copy is re-read
// rather than trusting any caller-held snapshot, so stale in-memory state
// can never clobber a concurrent commit.
//
// If mutate returns an error, nothing is written.
func (s *Store) Update(mutate func(p *Progress) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.loadLocked()
	if err != nil {
		return err
	}
	if err := mutate(p); err != nil {
		return err
	}
	if p.TokensCreated != len(p.Completed) {
		return fmt.Errorf("state: refusing commit: tokens_created=%d but %d completed entries", p.TokensCreated, len(p.Completed))
	}

	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := s.sub.Write(b); err != nil {
		return err
	}
	s.log.Debug("progress committed",
		logx.Int("tokens_created", p.TokensCreated),
		logx.Time("last_completed_at", p.LastCompletedAt))
	return nil
}

// Reset replaces the record with an empty one. Explicit operator action only.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(emptyProgress(), "", "  ")
	if err != nil {
		return err
	}
	return s.sub.Write(b)
}
