package launch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPool(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	data := "- name: Moon Cat\n  symbol: MCAT\n  uri: ipfs://QmMoonCat\n- name: Degen Dog\n  symbol: DDOG\n  uri: ipfs://QmDegenDog\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	pool, err := LoadPool(path)
	if err != nil {
		t.Fatalf("LoadPool: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("len = %d, want 2", len(pool))
	}
	if pool[0].Symbol != "MCAT" || pool[1].URI != "ipfs://QmDegenDog" {
		t.Fatalf("unexpected pool content: %+v", pool)
	}
}

func TestLoadPoolEmpty(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	if err := os.WriteFile(path, []byte("[]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadPool(path)
	if !errors.Is(err, ErrNoTokens) {
		t.Fatalf("err = %v, want ErrNoTokens", err)
	}
}

func TestLoadPoolMissingSymbol(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	if err := os.WriteFile(path, []byte("- name: NoSym\n  uri: ipfs://x\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadPool(path); err == nil {
		t.Fatal("expected error for missing symbol")
	}
}
