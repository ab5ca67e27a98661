package animation

import (
	"context"
	"sync"
	"time"
)

// FrameCallback receives the frame timestamp in milliseconds.
type FrameCallback func(timestampMs float64)

// FrameScheduler runs a callback once on the next frame.
type FrameScheduler interface {
	RequestFrame(cb FrameCallback)
}

// TickerScheduler fires requested callbacks from a time.Ticker. Callbacks
// run one after another on the goroutine calling Run; a callback requested
// while a frame is being delivered waits for the next tick.
type TickerScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	pending []FrameCallback
	done    bool
}

func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &TickerScheduler{interval: interval}
}

// RequestFrame queues cb for the next tick. Requests after Run has returned
// are dropped.
func (s *TickerScheduler) RequestFrame(cb FrameCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.pending = append(s.pending, cb)
}

// Run delivers frames until ctx is cancelled.
func (s *TickerScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer func() {
		s.mu.Lock()
		s.done = true
		s.pending = nil
		s.mu.Unlock()
	}()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.mu.Lock()
			batch := s.pending
			s.pending = nil
			s.mu.Unlock()

			ts := float64(now.Sub(start)) / float64(time.Millisecond)
			for _, cb := range batch {
				cb(ts)
			}
		}
	}
}

// ManualScheduler delivers frames only when advanced explicitly. It is used
// for headless runs and tests.
type ManualScheduler struct {
	mu      sync.Mutex
	now     float64
	pending []FrameCallback
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) RequestFrame(cb FrameCallback) {
	m.mu.Lock()
	m.pending = append(m.pending, cb)
	m.mu.Unlock()
}

// Advance moves the virtual clock forward by ms and fires every callback
// that was pending. It returns how many fired.
func (m *ManualScheduler) Advance(ms float64) int {
	m.mu.Lock()
	m.now += ms
	now := m.now
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, cb := range batch {
		cb(now)
	}
	return len(batch)
}

// Pending is the number of callbacks waiting for the next frame.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Now returns the current virtual timestamp in milliseconds.
func (m *ManualScheduler) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}
