package timex

import (
	"sync"
	"time"
)

// Timer is a cancellable, reschedulable one-shot timer. Schedule replaces
// any previously scheduled callback that has not fired yet, which is exactly
// the debounce behavior the sync engine needs: a new window supersedes a
// scheduled-but-not-started attempt, never one already running.
type Timer interface {
	// Schedule arranges for fn to run once after d. A pending schedule is
	// replaced.
	Schedule(d time.Duration, fn func())

	// Stop cancels a pending schedule, if any.
	Stop()
}

// SystemTimer implements Timer on top of time.AfterFunc.
type SystemTimer struct {
	mu sync.Mutex
	t  *time.Timer
}

func NewSystemTimer() *SystemTimer { return &SystemTimer{} }

func (s *SystemTimer) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t != nil {
		s.t.Stop()
	}
	s.t = time.AfterFunc(d, fn)
}

func (s *SystemTimer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t != nil {
		s.t.Stop()
		s.t = nil
	}
}

// ManualTimer is a Timer for tests: nothing fires until Fire is called,
// so tests advance virtual time deterministically.
type ManualTimer struct {
	mu      sync.Mutex
	pending func()
	delay   time.Duration
}

func NewManualTimer() *ManualTimer { return &ManualTimer{} }

func (m *ManualTimer) Schedule(d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = fn
	m.delay = d
}

func (m *ManualTimer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
}

// Pending reports whether a callback is scheduled and the delay it was
// scheduled with.
func (m *ManualTimer) Pending() (bool, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil, m.delay
}

// Fire runs the scheduled callback, if any, and clears it.
func (m *ManualTimer) Fire() {
	m.mu.Lock()
	fn := m.pending
	m.pending = nil
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}
