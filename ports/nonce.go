package ports

import (
	"context"

	"github.com/layer-3/siwe-auth/core"
)

// NonceStore issues single-use challenge nonces bound to a client context.
// Consume must be atomic: for a given nonce at most one caller ever gets true.
// Unknown contexts, wrong values, expired and already used nonces all yield
// false without saying which.
type NonceStore interface {
	Issue(ctx context.Context, sc core.SessionContext) (string, error)
	Consume(ctx context.Context, sc core.SessionContext, value string) (bool, error)
}
