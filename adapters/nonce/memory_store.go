package nonce

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/layer-3/siwe-auth/core"
)

// ErrEmptyContext is returned when a nonce is requested without a client context
var ErrEmptyContext = errors.New("session context is required")

// MemoryStore keeps one outstanding nonce per client context in process memory
type MemoryStore struct {
	records map[core.SessionContext]core.NonceRecord
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
}

// NewMemoryStore creates a new in-memory nonce store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		records: make(map[core.SessionContext]core.NonceRecord),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue replaces any outstanding nonce of sc with a fresh one
func (s *MemoryStore) Issue(ctx context.Context, sc core.SessionContext) (string, error) {
	if sc == "" {
		return "", ErrEmptyContext
	}

	value, err := Generate()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.records[sc] = core.NonceRecord{
		Value:     value,
		Context:   sc,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	return value, nil
}

// Consume burns the outstanding nonce of sc and reports whether it matched.
// Any attempt spends the nonce, so a wrong guess cannot be retried.
func (s *MemoryStore) Consume(ctx context.Context, sc core.SessionContext, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[sc]
	if !exists || !record.Usable(s.now()) {
		return false, nil
	}
	record.Consumed = true
	s.records[sc] = record

	return equal(record.Value, value), nil
}

// Cleanup drops consumed and expired nonces
func (s *MemoryStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for sc, record := range s.records {
		if !record.Usable(now) {
			delete(s.records, sc)
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

// Len returns the number of records not yet cleaned up
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
