package ratelimit

import (
	"context"
	"sync"
	"time"
)

type record struct {
	count     int
	resetTime time.Time
}

// MemoryFixedWindow is a process-local fixed-window counter. Good for a
// single instance; horizontally scaled deployments should use the redis
// limiter instead, since each process keeps its own table.
type MemoryFixedWindow struct {
	mu      sync.Mutex
	records map[string]*record
	limit   int
	window  time.Duration

	sweepEvery time.Duration
	stopChan   chan struct{}
	stopOnce   sync.Once

	now func() time.Time // overridable in tests
}

func NewMemoryFixedWindow(limit int, window, sweepEvery time.Duration) *MemoryFixedWindow {
	if sweepEvery <= 0 {
		sweepEvery = 5 * time.Minute
	}

	m := &MemoryFixedWindow{
		records:    make(map[string]*record),
		limit:      limit,
		window:     window,
		sweepEvery: sweepEvery,
		stopChan:   make(chan struct{}),
		now:        time.Now,
	}

	go m.sweepLoop()

	return m
}

func (m *MemoryFixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok || now.After(rec.resetTime) {
		m.records[key] = &record{count: 1, resetTime: now.Add(m.window)}
		return true, nil
	}

	if rec.count >= m.limit {
		// Denied requests do not extend or consume the window.
		return false, nil
	}

	rec.count++
	return true, nil
}

func (m *MemoryFixedWindow) Remaining(ctx context.Context, key string) (int, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok || now.After(rec.resetTime) {
		return m.limit, nil
	}

	remaining := m.limit - rec.count
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}

func (m *MemoryFixedWindow) Limit() int {
	return m.limit
}

func (m *MemoryFixedWindow) Window() time.Duration {
	return m.window
}

// Returns the time at which the limit resets for the key
func (m *MemoryFixedWindow) Reset(ctx context.Context, key string) (time.Time, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok || now.After(rec.resetTime) {
		return now.Add(m.window), nil
	}

	return rec.resetTime, nil
}

// Stop terminates the background sweep goroutine.
func (m *MemoryFixedWindow) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

func (m *MemoryFixedWindow) sweepLoop() {
	ticker := time.NewTicker(m.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stopChan:
			return
		}
	}
}

// sweep drops records whose window already expired so idle keys do not
// accumulate forever.
func (m *MemoryFixedWindow) sweep() {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, rec := range m.records {
		if now.After(rec.resetTime) {
			delete(m.records, key)
		}
	}
}
