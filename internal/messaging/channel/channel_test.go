package channel

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/petsupplies/internal/messaging"
)

func TestChannelBroker_PublishConsume(t *testing.T) {
	broker := NewChannelBroker(nil)
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan map[string]string, 1)
	ready := make(chan struct{})
	go func() {
		close(ready)
		broker.Consume(ctx, messaging.TopicOrderPlaced, "test", func(ctx context.Context, payload []byte) error {
			var body map[string]string
			if err := json.Unmarshal(payload, &body); err != nil {
				return err
			}
			select {
			case received <- body:
			default:
			}
			return nil
		})
	}()
	<-ready

	// Subscribe happens inside the goroutine; retry publishing until it is attached.
	deadline := time.After(2 * time.Second)
	for {
		require.NoError(t, broker.PublishEvent(ctx, messaging.TopicOrderPlaced, "ord-1", map[string]string{"orderId": "ord-1"}))
		select {
		case body := <-received:
			assert.Equal(t, "ord-1", body["orderId"])
			return
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			t.Fatal("message was not delivered")
		}
	}
}

func TestChannelBroker_ConsumeStopsOnCancel(t *testing.T) {
	broker := NewChannelBroker(nil)
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		broker.Consume(ctx, messaging.TopicOrderStatusChanged, "test", func(context.Context, []byte) error { return nil })
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
}
