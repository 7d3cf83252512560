package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	logx "mintbot/pkg/logx"
)

func testEntries() []LaunchEntry {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []LaunchEntry{
		{At: base, RunID: "r1", Seq: 0, WalletIndex: 0, Mint: "M0", Name: "Moon Cat", Symbol: "MCAT", SellSig: "s0", OK: true, TookMS: 1200},
		{At: base.Add(time.Minute), RunID: "r1", Seq: 1, WalletIndex: 1, Name: "Degen Dog", Symbol: "DDOG", OK: false, Error: "create: rpc timeout", TookMS: 900},
		{At: base.Add(2 * time.Minute), RunID: "r1", Seq: 2, WalletIndex: 0, Mint: "M2", Name: "Moon Cat", Symbol: "MCAT", OK: true, TookMS: 700},
	}
}

func roundTrip(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()
	for _, e := range testEntries() {
		if err := st.AppendLaunch(ctx, e); err != nil {
			t.Fatalf("AppendLaunch: %v", err)
		}
	}

	got, err := st.RecentLaunches(ctx, 2)
	if err != nil {
		t.Fatalf("RecentLaunches: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Chronological order, last two entries.
	if got[0].Seq != 1 || got[1].Seq != 2 {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].OK || got[0].Error == "" {
		t.Fatalf("failure entry lost its error: %+v", got[0])
	}
	if !got[1].OK || got[1].Mint != "M2" {
		t.Fatalf("success entry mangled: %+v", got[1])
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Driver: "file", Path: filepath.Join(t.TempDir(), "audit.jsonl")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()
	roundTrip(t, st)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "audit.db"), BusyTimeout: time.Second}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()
	roundTrip(t, st)
}

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if st != nil {
		t.Fatal("expected nil store when disabled")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "postgres"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
