package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/siwe-auth/core"
	"github.com/layer-3/siwe-auth/ports"
)

// ApplyOutcome derives the session that follows an authentication outcome.
// A failed outcome leaves the prior session untouched; a successful one
// starts a fresh session for the verified subject. The result has no ID yet.
func ApplyOutcome(prior core.Session, outcome core.Outcome, now time.Time, ttl time.Duration) core.Session {
	if !outcome.Authorized() {
		return prior
	}
	return core.Session{
		Subject:   outcome.Subject,
		ChainID:   outcome.ChainID,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

// SessionManager mints, checks and revokes session credentials
type SessionManager struct {
	tokenizer ports.Tokenizer
	store     ports.Store
	ttl       time.Duration
	now       func() time.Time
}

// NewSessionManager creates a session manager issuing credentials valid for ttl
func NewSessionManager(tokenizer ports.Tokenizer, store ports.Store, ttl time.Duration) *SessionManager {
	return &SessionManager{
		tokenizer: tokenizer,
		store:     store,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Issue mints a credential for a successful outcome
func (m *SessionManager) Issue(outcome core.Outcome) (*core.Session, string, error) {
	if !outcome.Authorized() {
		return nil, "", core.ErrSessionInvalid
	}

	// Credentials carry whole seconds.
	now := m.now().Truncate(time.Second)
	session := ApplyOutcome(core.Session{}, outcome, now, m.ttl)
	session.ID = uuid.New().String()

	token, err := m.tokenizer.SessionToToken(&session)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session token: %w", err)
	}

	return &session, token, nil
}

// Validate returns the session behind token. Every failure, including an
// unreachable revocation store, is reported as core.ErrSessionInvalid.
func (m *SessionManager) Validate(ctx context.Context, token string) (*core.Session, error) {
	session, err := m.tokenizer.TokenToSession(token)
	if err != nil {
		return nil, errors.Join(core.ErrSessionInvalid, err)
	}

	if !session.Valid(m.now()) {
		return nil, core.ErrSessionInvalid
	}

	revoked, err := m.store.IsRevoked(ctx, session.ID)
	if err != nil {
		return nil, errors.Join(core.ErrSessionInvalid, err)
	}
	if revoked {
		return nil, core.ErrSessionInvalid
	}

	return session, nil
}

// Refresh replaces a valid credential with a new one for the same subject
// and revokes the old one.
func (m *SessionManager) Refresh(ctx context.Context, token string) (*core.Session, string, error) {
	session, err := m.Validate(ctx, token)
	if err != nil {
		return nil, "", err
	}

	if err := m.store.Revoke(ctx, session.ID, session.ExpiresAt.Sub(m.now())); err != nil {
		return nil, "", fmt.Errorf("failed to revoke old session: %w", err)
	}

	return m.Issue(core.Success(session.Subject, session.ChainID))
}

// Invalidate revokes the credential for the rest of its lifetime and
// returns the session it carried. Revoking twice reports core.ErrSessionInvalid.
func (m *SessionManager) Invalidate(ctx context.Context, token string) (*core.Session, error) {
	session, err := m.tokenizer.TokenToSession(token)
	if err != nil {
		return nil, errors.Join(core.ErrSessionInvalid, err)
	}

	// An unreachable store falls through to Revoke, which reports it.
	if revoked, err := m.store.IsRevoked(ctx, session.ID); err == nil && revoked {
		return nil, core.ErrSessionInvalid
	}

	remaining := session.ExpiresAt.Sub(m.now())
	if remaining <= 0 {
		return session, nil
	}

	if err := m.store.Revoke(ctx, session.ID, remaining); err != nil {
		return nil, fmt.Errorf("failed to revoke session: %w", err)
	}

	return session, nil
}
