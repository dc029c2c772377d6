package ratelimit

import (
	"time"

	"github.com/xjinkx/license-gateway/internal/storage"
)

// NewLimiter picks the counter store. "redis" shares the window across
// instances; anything else falls back to the in-process map.
func NewLimiter(store string, redis *storage.RedisClient, limit int, window, sweepEvery time.Duration) Limiter {
	switch store {
	case "redis":
		if redis != nil {
			return NewRedisFixedWindow(redis, limit, window)
		}
		return NewMemoryFixedWindow(limit, window, sweepEvery)
	default:
		return NewMemoryFixedWindow(limit, window, sweepEvery)
	}
}
