package service

import (
	"context"
	"errors"

	"github.com/layer-3/siwe-auth/core"
	"github.com/layer-3/siwe-auth/ports"
	"github.com/sirupsen/logrus"
)

// AuthService handles the sign-in flow from nonce to session
type AuthService struct {
	nonces      ports.NonceStore
	adjudicator *Adjudicator
	sessions    *SessionManager
	registry    ports.AccountRegistry
	eventPub    ports.EventPublisher
	log         logrus.FieldLogger
}

// NewAuthService creates a new authentication service. registry and
// eventPub are optional collaborators and may be nil.
func NewAuthService(
	nonces ports.NonceStore,
	adjudicator *Adjudicator,
	sessions *SessionManager,
	registry ports.AccountRegistry,
	eventPub ports.EventPublisher,
	log logrus.FieldLogger,
) *AuthService {
	return &AuthService{
		nonces:      nonces,
		adjudicator: adjudicator,
		sessions:    sessions,
		registry:    registry,
		eventPub:    eventPub,
		log:         log.WithField("component", "auth"),
	}
}

// Nonce issues a fresh challenge nonce bound to sc
func (s *AuthService) Nonce(ctx context.Context, sc core.SessionContext) (string, error) {
	return s.nonces.Issue(ctx, sc)
}

// Authorize adjudicates a signed message and, on success, starts a session.
// The returned error carries the diagnostic reason; callers must not echo it.
func (s *AuthService) Authorize(ctx context.Context, sc core.SessionContext, creds core.Credentials) (*core.Session, string, error) {
	outcome := s.adjudicator.Adjudicate(ctx, sc, creds)
	if !outcome.Authorized() {
		s.log.WithFields(logrus.Fields{
			"reason": outcome.Reason,
			"error":  outcome.Err,
		}).Warn("authentication failed")
		return nil, "", outcome.Err
	}

	session, token, err := s.sessions.Issue(outcome)
	if err != nil {
		return nil, "", err
	}

	log := s.log.WithFields(logrus.Fields{
		"address":    session.Subject,
		"chain_id":   session.ChainID,
		"session_id": session.ID,
	})

	if s.registry != nil {
		if _, err := s.registry.Upsert(ctx, session.Subject, session.ChainID); err != nil {
			log.WithError(err).Warn("failed to upsert account")
		}
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishSignedIn(ctx, *session); err != nil {
			log.WithError(err).Warn("failed to publish sign-in event")
		}
	}

	log.Info("signed in")
	return session, token, nil
}

// Validate returns the session a credential stands for
func (s *AuthService) Validate(ctx context.Context, token string) (*core.Session, error) {
	return s.sessions.Validate(ctx, token)
}

// Refresh rotates a valid session credential
func (s *AuthService) Refresh(ctx context.Context, token string) (*core.Session, string, error) {
	return s.sessions.Refresh(ctx, token)
}

// SignOut invalidates the session behind token. Signing out with a missing,
// expired or already revoked credential is not an error.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	session, err := s.sessions.Invalidate(ctx, token)
	if errors.Is(err, core.ErrSessionInvalid) {
		return nil
	}
	if err != nil {
		return err
	}

	if s.eventPub != nil {
		// The credential is already revoked; the event only informs other instances.
		if err := s.eventPub.PublishSignedOut(ctx, session.Subject, session.ID); err != nil {
			s.log.WithError(err).WithField("session_id", session.ID).Warn("failed to publish sign-out event")
		}
	}

	s.log.WithFields(logrus.Fields{
		"address":    session.Subject,
		"session_id": session.ID,
	}).Info("signed out")
	return nil
}
