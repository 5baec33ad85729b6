package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/layer-3/siwe-auth/core"
	"github.com/layer-3/siwe-auth/ports"
	"github.com/stretchr/testify/require"
)

var _ ports.EventPublisher = (*WatermillPublisher)(nil)

func receive(t *testing.T, messages <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-messages:
		msg.Ack()
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestWatermillPublisher(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	signedIn, err := pubSub.Subscribe(ctx, TopicSignedIn)
	require.NoError(t, err)
	signedOut, err := pubSub.Subscribe(ctx, TopicSignedOut)
	require.NoError(t, err)

	publisher := NewWatermillPublisher(pubSub)

	session := core.Session{
		ID:        "session-1",
		Subject:   "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		ChainID:   1,
		ExpiresAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	t.Run("signed in", func(t *testing.T) {
		require.NoError(t, publisher.PublishSignedIn(ctx, session))

		msg := receive(t, signedIn)
		require.NotEmpty(t, msg.UUID)

		var event SignedInEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		require.Equal(t, SignedInEvent{
			Address:   session.Subject,
			ChainID:   1,
			SessionID: "session-1",
			ExpiresAt: session.ExpiresAt,
		}, event)
	})

	t.Run("signed out", func(t *testing.T) {
		require.NoError(t, publisher.PublishSignedOut(ctx, session.Subject, session.ID))

		msg := receive(t, signedOut)

		var event SignedOutEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		require.Equal(t, SignedOutEvent{Address: session.Subject, SessionID: "session-1"}, event)
	})
}

type failingPublisher struct{}

func (failingPublisher) Publish(topic string, messages ...*message.Message) error {
	return errors.New("broker down")
}

func (failingPublisher) Close() error { return nil }

func TestWatermillPublisherError(t *testing.T) {
	publisher := NewWatermillPublisher(failingPublisher{})
	err := publisher.PublishSignedOut(context.Background(), "0xabc", "session-1")
	require.ErrorContains(t, err, "broker down")
}
