package ports

import (
	"context"

	"github.com/layer-3/siwe-auth/core"
)

// EventPublisher publishes events to notify other instances
type EventPublisher interface {
	PublishSignedIn(ctx context.Context, session core.Session) error
	PublishSignedOut(ctx context.Context, address string, sessionID string) error
}
