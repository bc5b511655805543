// Package channel is an in-process broker on watermill's Go channel pub/sub.
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/egannguyen/petsupplies/internal/messaging"
)

const keyMetadata = "key"

type channelBroker struct {
	pubsub *gochannel.GoChannel
}

// NewChannelBroker creates a broker whose subscribers each receive every message.
func NewChannelBroker(logger *slog.Logger) messaging.Broker {
	if logger == nil {
		logger = slog.Default()
	}
	return &channelBroker{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewSlogLogger(logger),
		),
	}
}

func (b *channelBroker) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(keyMetadata, key)
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

// Consume ignores groupID; every in-process subscriber sees every message.
func (b *channelBroker) Consume(ctx context.Context, topic string, groupID string, handler messaging.Handler) {
	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		slog.Error("Error subscribing", "topic", topic, "err", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Consumer shutting down", "topic", topic)
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := handler(ctx, msg.Payload); err != nil {
				slog.Error("Error handling message", "topic", topic, "uuid", msg.UUID, "err", err)
			}
			msg.Ack()
		}
	}
}

func (b *channelBroker) Close() error {
	return b.pubsub.Close()
}
