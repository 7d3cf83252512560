package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "mintbot/pkg/logx"
)

// fileStore is a dependency-free audit backend: one append-only JSON Lines
// file. Malformed lines (e.g. from a crash mid-append) are skipped on read.
type fileStore struct {
	log  logx.Logger
	path string

	mu   sync.Mutex
	file *os.File
}

type launchRecord struct {
	At          time.Time `json:"at"`
	RunID       string    `json:"run_id"`
	Seq         int       `json:"seq"`
	WalletIndex int       `json:"wallet_index"`
	Mint        string    `json:"mint,omitempty"`
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	SellSig     string    `json:"sell_sig,omitempty"`
	OK          bool      `json:"ok"`
	Error       string    `json:"error,omitempty"`
	TookMS      int64     `json:"took_ms"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("audit.path is required for file driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	return &fileStore{log: log, path: path, file: f}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *fileStore) AppendLaunch(ctx context.Context, e LaunchEntry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	b, err := json.Marshal(fromEntry(e))
	if err != nil {
		return err
	}
	b = append(b, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return ErrDisabled
	}
	_, err = s.file.Write(b)
	return err
}

func (s *fileStore) RecentLaunches(ctx context.Context, limit int) ([]LaunchEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var all []LaunchEntry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec launchRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			s.log.Warn("skipping malformed audit line", logx.Err(err))
			continue
		}
		all = append(all, rec.toEntry())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func fromEntry(e LaunchEntry) launchRecord {
	return launchRecord{
		At:          e.At,
		RunID:       e.RunID,
		Seq:         e.Seq,
		WalletIndex: e.WalletIndex,
		Mint:        e.Mint,
		Name:        e.Name,
		Symbol:      e.Symbol,
		SellSig:     e.SellSig,
		OK:          e.OK,
		Error:       e.Error,
		TookMS:      e.TookMS,
	}
}

func (r launchRecord) toEntry() LaunchEntry {
	return LaunchEntry{
		At:          r.At,
		RunID:       r.RunID,
		Seq:         r.Seq,
		WalletIndex: r.WalletIndex,
		Mint:        r.Mint,
		Name:        r.Name,
		Symbol:      r.Symbol,
		SellSig:     r.SellSig,
		OK:          r.OK,
		Error:       r.Error,
		TookMS:      r.TookMS,
	}
}
