package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(limit int, window time.Duration) (*MemoryFixedWindow, *time.Time) {
	m := NewMemoryFixedWindow(limit, window, time.Hour)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestMemoryFixedWindowAllowsUpToLimit(t *testing.T) {
	m, _ := newTestLimiter(5, time.Minute)
	defer m.Stop()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		allowed, err := m.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, err := m.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed, "6th request in the window must be denied")

	// A different key is unaffected.
	allowed, err = m.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryFixedWindowResetsAfterBoundary(t *testing.T) {
	m, now := newTestLimiter(2, time.Minute)
	defer m.Stop()

	ctx := context.Background()
	m.Allow(ctx, "k")
	m.Allow(ctx, "k")

	allowed, _ := m.Allow(ctx, "k")
	assert.False(t, allowed)

	// Strictly after the window boundary the counter starts over at 1.
	*now = now.Add(time.Minute + time.Second)

	allowed, _ = m.Allow(ctx, "k")
	assert.True(t, allowed)

	remaining, err := m.Remaining(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestMemoryFixedWindowDenialDoesNotMutate(t *testing.T) {
	m, _ := newTestLimiter(1, time.Minute)
	defer m.Stop()

	ctx := context.Background()
	m.Allow(ctx, "k")

	reset1, _ := m.Reset(ctx, "k")
	m.Allow(ctx, "k") // denied
	reset2, _ := m.Reset(ctx, "k")

	assert.Equal(t, reset1, reset2, "denied request must not extend the window")
}

func TestMemoryFixedWindowSweep(t *testing.T) {
	m, now := newTestLimiter(5, time.Minute)
	defer m.Stop()

	ctx := context.Background()
	m.Allow(ctx, "a")
	m.Allow(ctx, "b")

	*now = now.Add(2 * time.Minute)
	m.Allow(ctx, "c")

	m.sweep()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.NotContains(t, m.records, "a")
	assert.NotContains(t, m.records, "b")
	assert.Contains(t, m.records, "c")
}

func TestMemoryFixedWindowRemainingForUnknownKey(t *testing.T) {
	m, _ := newTestLimiter(5, time.Minute)
	defer m.Stop()

	remaining, err := m.Remaining(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)
}
