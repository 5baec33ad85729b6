// Package client holds the browser-side half of the sign-in flow: the local
// session state, the wallet watcher and an HTTP client for the auth API.
package client

import "sync"

// Status is the session status exposed to the rendering layer
type Status string

const (
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// Snapshot is a copy of the local session at one point in time
type Snapshot struct {
	Status  Status
	Subject string
	ChainID uint64
	Token   string
}

// SessionState is the local view of the current session
type SessionState struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewSessionState starts in the loading status until the first Set or Clear
func NewSessionState() *SessionState {
	return &SessionState{snap: Snapshot{Status: StatusLoading}}
}

// Set records an authenticated session
func (s *SessionState) Set(token, subject string, chainID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{
		Status:  StatusAuthenticated,
		Subject: subject,
		ChainID: chainID,
		Token:   token,
	}
}

// Clear drops the local session
func (s *SessionState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{Status: StatusUnauthenticated}
}

func (s *SessionState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
