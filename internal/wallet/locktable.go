package wallet

import "sync"

// LockTable is the in-memory busy map for the wallet pool.
//
// Acquisition is advisory and non-blocking: callers that need a busy wallet
// poll TryAcquire at their own interval. The table is never persisted; a
// fresh process starts with every wallet free.
type LockTable struct {
	mu   sync.Mutex
	busy []bool
}

func NewLockTable(size int) *LockTable {
	if size < 0 {
		size = 0
	}
	return &LockTable{busy: make([]bool, size)}
}

func (t *LockTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.busy)
}

// TryAcquire marks index busy and returns true iff it was free.
// Out-of-range indexes are never acquirable.
func (t *LockTable) TryAcquire(index int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.busy) {
		return false
	}
	if t.busy[index] {
		return false
	}
	t.busy[index] = true
	return true
}

// Release marks index free. Releasing a free (or out-of-range) index is a no-op.
func (t *LockTable) Release(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.busy) {
		return
	}
	t.busy[index] = false
}

func (t *LockTable) IsLocked(index int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.busy) {
		return false
	}
	return t.busy[index]
}
