package ports

import (
	"context"
	"time"
)

// Store records revoked session credentials until they would have expired anyway
type Store interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}
