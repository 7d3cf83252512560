package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mintbot/internal/launch"
	logx "mintbot/pkg/logx"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	return NewStore(NewFileSubstrate(path), logx.Nop()), path
}

func TestLoadMissingReturnsEmpty(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	p, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.TokensCreated != 0 || len(p.Completed) != 0 || !p.StartedAt.IsZero() {
		t.Fatalf("expected empty record, got %+v", p)
	}
}

func TestUpdatePersistsAndReloads(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)

	start := time.Now().UTC().Truncate(time.Second)
	err := s.Update(func(p *Progress) error {
		p.StartedAt = start
		p.TokensCreated = 1
		p.LastCompletedAt = start
		p.Completed = append(p.Completed, CompletedLaunch{
			Mint:        "M1",
			Token:       launch.TokenMeta{Name: "Moon Cat", Symbol: "MCAT"},
			CompletedAt: start,
			WalletIndex: 2,
		})
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	p, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.TokensCreated != 1 || len(p.Completed) != 1 {
		t.Fatalf("unexpected record: %+v", p)
	}
	if !p.StartedAt.Equal(start) {
		t.Fatalf("StartedAt = %v, want %v", p.StartedAt, start)
	}
	if p.Completed[0].Mint != "M1" || p.Completed[0].WalletIndex != 2 {
		t.Fatalf("unexpected completed entry: %+v", p.Completed[0])
	}
}

func TestConcurrentUpdatesLoseNothing(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)

	const n = 40
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			err := s.Update(func(p *Progress) error {
				p.TokensCreated++
				p.Completed = append(p.Completed, CompletedLaunch{
					Mint:        fmt.Sprintf("M%d", i),
					CompletedAt: time.Now(),
				})
				return nil
			})
			if err != nil {
				t.Errorf("Update %d: %v", i, err)
			}
		}()
	}
	wg.Wait()

	p, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.TokensCreated != n {
		t.Fatalf("TokensCreated = %d, want %d (lost update)", p.TokensCreated, n)
	}
	if len(p.Completed) != n {
		t.Fatalf("len(Completed) = %d, want %d", len(p.Completed), n)
	}
}

func TestMutatorErrorWritesNothing(t *testing.T) {
	t.Parallel()
	s, path := newTestStore(t)

	if err := s.Update(func(p *Progress) error {
		p.TokensCreated = 1
		p.Completed = append(p.Completed, CompletedLaunch{Mint: "M1"})
		return nil
	}); err != nil {
		t.Fatalf("seed Update: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	boom := errors.New("boom")
	err = s.Update(func(p *Progress) error {
		p.TokensCreated = 99
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(before) != string(after) {
		t.Fatal("record changed despite mutator error")
	}
}

func TestCorruptRecordIsFatal(t *testing.T) {
	t.Parallel()
	s, path := newTestStore(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var ce *CorruptError
	if _, err := s.Load(); !errors.As(err, &ce) {
		t.Fatalf("Load err = %v, want CorruptError", err)
	}
	if err := s.Update(func(p *Progress) error { return nil }); !errors.As(err, &ce) {
		t.Fatalf("Update err = %v, want CorruptError", err)
	}
}

func TestCountMismatchIsCorrupt(t *testing.T) {
	t.Parallel()
	s, path := newTestStore(t)
	bad := `{"tokens_created": 3, "started_at": "2026-01-02T03:04:05Z", "completed": []}`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var ce *CorruptError
	if _, err := s.Load(); !errors.As(err, &ce) {
		t.Fatalf("Load err = %v, want CorruptError", err)
	}
}

func TestReset(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	if err := s.Update(func(p *Progress) error {
		p.StartedAt = time.Now()
		p.TokensCreated = 1
		p.Completed = append(p.Completed, CompletedLaunch{Mint: "M1"})
		return nil
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	p, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.TokensCreated != 0 || len(p.Completed) != 0 || !p.StartedAt.IsZero() {
		t.Fatalf("expected empty record after reset, got %+v", p)
	}
}
