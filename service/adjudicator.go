package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/layer-3/siwe-auth/core"
	"github.com/layer-3/siwe-auth/internal/eth"
	"github.com/layer-3/siwe-auth/internal/siwe"
	"github.com/layer-3/siwe-auth/ports"
)

// Binding is the deployment identity a message must be issued for
type Binding struct {
	Domain    string        // expected host[:port]
	Origin    string        // expected scheme://host[:port]
	MaxAge    time.Duration // oldest acceptable Issued At
	ClockSkew time.Duration // tolerated Issued At drift into the future
}

// SignatureVerifier recovers the signer of text and requires it to be claimed
type SignatureVerifier func(text, signature string, claimed common.Address) (common.Address, error)

// Adjudicator decides a single authentication attempt.
//
// Checks run in a fixed order and stop at the first failure:
// credentials present, message parses, nonce consumed, domain, origin,
// validity window, signature. The nonce is spent before any binding check
// so a failed attempt can never be retried with the same nonce, and the
// binding checks come before signature recovery.
type Adjudicator struct {
	nonces  ports.NonceStore
	binding Binding
	origin  string
	verify  SignatureVerifier
	now     func() time.Time
}

// NewAdjudicator creates an adjudicator for the given deployment binding
func NewAdjudicator(nonces ports.NonceStore, binding Binding) *Adjudicator {
	return &Adjudicator{
		nonces:  nonces,
		binding: binding,
		origin:  normalizeOrigin(binding.Origin),
		verify:  eth.VerifySignature,
		now:     time.Now,
	}
}

// Adjudicate runs every check for one attempt and returns its outcome
func (a *Adjudicator) Adjudicate(ctx context.Context, sc core.SessionContext, creds core.Credentials) core.Outcome {
	if creds.Message == "" || creds.Signature == "" {
		return core.Failure(core.ErrMissingCredentials)
	}

	msg, err := siwe.DecodePayload(creds.Message)
	if err != nil {
		return core.Failure(err)
	}

	consumed, err := a.nonces.Consume(ctx, sc, msg.Nonce)
	if err != nil {
		return core.Failure(err)
	}
	if !consumed {
		return core.Failure(core.ErrNonceMismatch)
	}

	if !strings.EqualFold(msg.Domain, a.binding.Domain) {
		return core.Failure(fmt.Errorf("message domain %q, expected %q: %w", msg.Domain, a.binding.Domain, core.ErrDomainMismatch))
	}

	if a.origin == "" || normalizeOrigin(msg.URI) != a.origin {
		return core.Failure(fmt.Errorf("message uri %q, expected %q: %w", msg.URI, a.binding.Origin, core.ErrOriginMismatch))
	}

	if err := msg.CheckWindow(a.now(), a.binding.MaxAge, a.binding.ClockSkew); err != nil {
		return core.Failure(err)
	}

	recovered, err := a.verify(msg.String(), creds.Signature, msg.Address)
	if err != nil {
		return core.Failure(err)
	}

	return core.Success(recovered.Hex(), msg.ChainID)
}

// normalizeOrigin lowercases scheme and host and drops a trailing slash.
// URIs carrying credentials, a query or a fragment never match.
func normalizeOrigin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	if u.User != nil || u.RawQuery != "" || u.Fragment != "" {
		return ""
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + strings.TrimSuffix(u.EscapedPath(), "/")
}
