package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/layer-3/siwe-auth/core"
)

const (
	TopicSignedIn  = "siwe.signed_in"
	TopicSignedOut = "siwe.signed_out"
)

// SignedInEvent is published after a successful sign-in
type SignedInEvent struct {
	Address   string    `json:"address"`
	ChainID   uint64    `json:"chain_id"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SignedOutEvent is published when a session is invalidated
type SignedOutEvent struct {
	Address   string `json:"address"`
	SessionID string `json:"session_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishSignedIn publishes a sign-in event
func (p *WatermillPublisher) PublishSignedIn(ctx context.Context, session core.Session) error {
	return p.publish(ctx, TopicSignedIn, SignedInEvent{
		Address:   session.Subject,
		ChainID:   session.ChainID,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	})
}

// PublishSignedOut publishes a sign-out event
func (p *WatermillPublisher) PublishSignedOut(ctx context.Context, address string, sessionID string) error {
	return p.publish(ctx, TopicSignedOut, SignedOutEvent{
		Address:   address,
		SessionID: sessionID,
	})
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
