package kafka

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only against a live broker, e.g. PETSUPPLIES_TEST_KAFKA_BROKERS=localhost:9092.
func TestKafkaBroker_RoundTrip(t *testing.T) {
	addrs := os.Getenv("PETSUPPLIES_TEST_KAFKA_BROKERS")
	if addrs == "" {
		t.Skip("PETSUPPLIES_TEST_KAFKA_BROKERS not set")
	}
	broker := NewKafkaBroker(strings.Split(addrs, ","))
	defer broker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "petsupplies-test-" + uuid.NewString()
	require.NoError(t, broker.PublishEvent(ctx, topic, "ord-1", map[string]string{"order_id": "ord-1"}))

	got := make(chan []byte, 1)
	go broker.Consume(ctx, topic, "petsupplies-test", func(ctx context.Context, payload []byte) error {
		select {
		case got <- payload:
		default:
		}
		return nil
	})

	select {
	case payload := <-got:
		var event map[string]string
		require.NoError(t, json.Unmarshal(payload, &event))
		assert.Equal(t, "ord-1", event["order_id"])
	case <-ctx.Done():
		t.Fatal("no message consumed")
	}
}
