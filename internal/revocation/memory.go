package revocation

import (
	"context"
	"sync"
	"time"
)

const defaultSweepInterval = time.Minute

type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]time.Time
	now       func() time.Time
	interval  time.Duration
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]time.Time),
		now:      time.Now,
		interval: defaultSweepInterval,
	}
}

func (s *MemoryStore) Add(_ context.Context, key string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	if exp, ok := s.entries[key]; ok && now.Before(exp) {
		return false, nil
	}
	if !now.Before(expiresAt) {
		// already expired: nothing to remember, but the caller still consumed it
		return true, nil
	}
	s.entries[key] = expiresAt
	return true, nil
}

func (s *MemoryStore) Contains(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.entries[key]
	return ok && s.now().Before(exp), nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) < s.interval {
		return
	}
	for k, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, k)
		}
	}
	s.lastSweep = now
}
