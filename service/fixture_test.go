package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/layer-3/siwe-auth/adapters/nonce"
	"github.com/layer-3/siwe-auth/adapters/store"
	"github.com/layer-3/siwe-auth/adapters/tokenizer"
	"github.com/layer-3/siwe-auth/core"
	"github.com/layer-3/siwe-auth/internal/eth"
	"github.com/layer-3/siwe-auth/internal/siwe"
	"github.com/stretchr/testify/require"
)

const (
	testDomain  = "example.com"
	testOrigin  = "https://example.com"
	testContext = core.SessionContext("0b6f8d0e-3c1f-4a4e-9f57-6f2f1c2d3e4f")
)

var testBinding = Binding{
	Domain:    testDomain,
	Origin:    testOrigin,
	MaxAge:    10 * time.Minute,
	ClockSkew: time.Minute,
}

// fixture wires the sign-in core over in-memory adapters
type fixture struct {
	nonces      *nonce.MemoryStore
	revocations *store.MemoryStore
	adjudicator *Adjudicator
	sessions    *SessionManager
	signer      *eth.KeySigner
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	nonces := nonce.NewMemoryStore(5 * time.Minute)
	revocations := store.NewMemoryStore()

	tok, err := tokenizer.NewJWTTokenizer([]byte(strings.Repeat("k", tokenizer.MinSecretLength)), testOrigin)
	require.NoError(t, err)

	signer, err := eth.GenerateKeySigner()
	require.NoError(t, err)

	return &fixture{
		nonces:      nonces,
		revocations: revocations,
		adjudicator: NewAdjudicator(nonces, testBinding),
		sessions:    NewSessionManager(tok, revocations, time.Hour),
		signer:      signer,
	}
}

// message returns a message the fixture deployment would accept
func (f *fixture) message(nonceValue string) *siwe.Message {
	return &siwe.Message{
		Domain:    testDomain,
		Address:   f.signer.Address(),
		Statement: "Sign in to Example.",
		URI:       testOrigin,
		Version:   siwe.Version1,
		ChainID:   1,
		Nonce:     nonceValue,
		IssuedAt:  siwe.NewTimestamp(time.Now()),
	}
}

// credentials issues a nonce for testContext and signs a message carrying it
func (f *fixture) credentials(t *testing.T, mutate func(*siwe.Message)) core.Credentials {
	t.Helper()

	value, err := f.nonces.Issue(context.Background(), testContext)
	require.NoError(t, err)

	msg := f.message(value)
	if mutate != nil {
		mutate(msg)
	}

	return f.sign(t, msg)
}

func (f *fixture) sign(t *testing.T, msg *siwe.Message) core.Credentials {
	t.Helper()

	text, err := msg.Build()
	require.NoError(t, err)
	signature, err := f.signer.SignMessage(text)
	require.NoError(t, err)

	return core.Credentials{Message: text, Signature: signature}
}

type failingNonceStore struct{}

func (failingNonceStore) Issue(ctx context.Context, sc core.SessionContext) (string, error) {
	return "", errors.Join(core.ErrStoreOperationFailed, errors.New("connection refused"))
}

func (failingNonceStore) Consume(ctx context.Context, sc core.SessionContext, value string) (bool, error) {
	return false, errors.Join(core.ErrStoreOperationFailed, errors.New("connection refused"))
}

type failingStore struct{}

func (failingStore) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	return errors.Join(core.ErrStoreOperationFailed, errors.New("connection refused"))
}

func (failingStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	return false, errors.Join(core.ErrStoreOperationFailed, errors.New("connection refused"))
}
