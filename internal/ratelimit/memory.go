package ratelimit

import (
	"context"
	"sync"
	"time"
)

type windowEntry struct {
	count   int
	resetAt time.Time
}

// MemoryFixedWindow is a process-local fixed-window limiter. A key's window
// opens on its first request and lasts for window; the request that finds the
// window expired opens a new one. Expired entries are removed by Sweep.
type MemoryFixedWindow struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	limit   int
	window  time.Duration
	now     func() time.Time
}

func NewMemoryFixedWindow(limit int, window time.Duration) *MemoryFixedWindow {
	return &MemoryFixedWindow{
		entries: make(map[string]*windowEntry),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

func (m *MemoryFixedWindow) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || now.After(e.resetAt) {
		m.entries[key] = &windowEntry{count: 1, resetAt: now.Add(m.window)}
		return true, nil
	}

	e.count++
	return e.count <= m.limit, nil
}

func (m *MemoryFixedWindow) Remaining(_ context.Context, key string) (int, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || now.After(e.resetAt) {
		return m.limit, nil
	}

	remaining := m.limit - e.count
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

func (m *MemoryFixedWindow) Reset(_ context.Context, key string) (time.Time, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || now.After(e.resetAt) {
		return now, nil
	}
	return e.resetAt, nil
}

// Sweep drops every entry whose window has ended and returns how many were
// removed.
func (m *MemoryFixedWindow) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, e := range m.entries {
		if now.After(e.resetAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is done.
func (m *MemoryFixedWindow) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Len reports the number of tracked keys.
func (m *MemoryFixedWindow) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
