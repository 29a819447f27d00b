package ratelimit

import (
	"time"
)

// NewLimiter builds the fixed-window limiter for backend. A nil store always
// yields the in-memory limiter.
func NewLimiter(backend string, store CounterStore, limit int, window time.Duration) Limiter {
	if backend == "redis" && store != nil {
		return NewFixedWindow(store, limit, window)
	}
	return NewMemoryFixedWindow(limit, window)
}
