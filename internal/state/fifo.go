package state

import "sync"

// fifoMutex is a mutual-exclusion lock that serves waiters strictly in
// arrival order. sync.Mutex gives no fairness guarantee; here two jobs
// completing at nearly the same time must commit in the order they asked.
type fifoMutex struct {
	mu      sync.Mutex
	locked  bool
	waiters []chan struct{}
}

func (m *fifoMutex) Lock() {
	m.mu.Lock()
	if !m.locked {
		m.locked = true
		m.mu.Unlock()
		return
	}
	ch := make(chan struct{})
	m.waiters = append(m.waiters, ch)
	m.mu.Unlock()
	// The unlocker hands the lock to us directly; no re-check needed.
	<-ch
}

func (m *fifoMutex) Unlock() {
	m.mu.Lock()
	if len(m.waiters) > 0 {
		ch := m.waiters[0]
		m.waiters = m.waiters[1:]
		m.mu.Unlock()
		close(ch)
		return
	}
	m.locked = false
	m.mu.Unlock()
}
