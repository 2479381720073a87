package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process fallback: same fixed-window semantics as
// the redis store, scoped to the current process only.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry

	now func() time.Time
}

type memoryEntry struct {
	windowIndex int64
	count       int64
	resetAt     time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	index, resetAt := windowBounds(s.now(), window)

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || ent.windowIndex != index {
		ent = &memoryEntry{windowIndex: index, resetAt: resetAt}
		s.entries[key] = ent
	}
	ent.count++
	return ent.count, ent.resetAt, nil
}

// Cleanup drops entries whose window has already reset.
func (s *MemoryStore) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, ent := range s.entries {
		if ent.resetAt.Before(now) {
			delete(s.entries, key)
		}
	}
}

// StartJanitor launches a goroutine that sweeps expired windows until the
// context is cancelled.
func (s *MemoryStore) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
