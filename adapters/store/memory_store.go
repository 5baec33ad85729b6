package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of the Store interface
type MemoryStore struct {
	revoked map[string]time.Time // session ID -> when the record may be dropped
	now     func() time.Time
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke marks a session as revoked for ttl
func (s *MemoryStore) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	until := s.now().Add(ttl)
	// A longer earlier revocation wins.
	if current, exists := s.revoked[sessionID]; exists && current.After(until) {
		return nil
	}
	s.revoked[sessionID] = until

	return nil
}

// IsRevoked checks if a session is revoked
func (s *MemoryStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	until, exists := s.revoked[sessionID]
	if !exists {
		return false, nil
	}

	return s.now().Before(until), nil
}

// Cleanup removes revocation records whose sessions have expired anyway
func (s *MemoryStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, until := range s.revoked {
		if !now.Before(until) {
			delete(s.revoked, id)
		}
	}
}

// Run calls Cleanup every interval until ctx is done
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}
