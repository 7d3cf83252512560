package wallet

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLockTableAcquireRelease(t *testing.T) {
	t.Parallel()
	lt := NewLockTable(3)

	if !lt.TryAcquire(1) {
		t.Fatal("first TryAcquire should succeed")
	}
	if lt.TryAcquire(1) {
		t.Fatal("TryAcquire on busy index should fail")
	}
	if !lt.IsLocked(1) {
		t.Fatal("IsLocked should report busy")
	}
	if !lt.TryAcquire(2) {
		t.Fatal("other index should be unaffected")
	}

	lt.Release(1)
	if lt.IsLocked(1) {
		t.Fatal("IsLocked should report free after Release")
	}
	if !lt.TryAcquire(1) {
		t.Fatal("TryAcquire should succeed after Release")
	}

	// Idempotent release.
	lt.Release(0)
	lt.Release(0)
	if !lt.TryAcquire(0) {
		t.Fatal("TryAcquire should succeed after double Release")
	}
}

func TestLockTableOutOfRange(t *testing.T) {
	t.Parallel()
	lt := NewLockTable(2)
	if lt.TryAcquire(-1) || lt.TryAcquire(2) {
		t.Fatal("out-of-range TryAcquire should fail")
	}
	lt.Release(99) // must not panic
	if lt.IsLocked(99) {
		t.Fatal("out-of-range IsLocked should be false")
	}
}

func TestLoadPool(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "wallets.yaml")
	data := "- address: 4Nd1mYQKqGhLdkk3TMyAFcZdCvAkJqfc8FkkvAaUvXcJ\n  private_key: key0\n- address: 9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM\n  private_key: key1\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	ws, err := LoadPool(path)
	if err != nil {
		t.Fatalf("LoadPool: %v", err)
	}
	if len(ws) != 2 {
		t.Fatalf("len = %d, want 2", len(ws))
	}
	if ws[0].Index != 0 || ws[1].Index != 1 {
		t.Fatalf("indexes not dense: %d, %d", ws[0].Index, ws[1].Index)
	}
	if ws[1].Short() != "9WzD..AWWM" {
		t.Fatalf("Short = %q", ws[1].Short())
	}
}

func TestLoadPoolEmpty(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "wallets.yaml")
	if err := os.WriteFile(path, []byte("[]\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadPool(path); err == nil {
		t.Fatal("expected error for empty pool")
	}
}
