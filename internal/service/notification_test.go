package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/messaging"
)

type scriptedSubscriber struct {
	payloads map[string][][]byte
	handled  chan string
}

func (s *scriptedSubscriber) Consume(ctx context.Context, topic, groupID string, handler messaging.Handler) {
	for _, p := range s.payloads[topic] {
		if err := handler(ctx, p); err == nil {
			s.handled <- topic
		}
	}
	<-ctx.Done()
}

func TestNotificationService_Run(t *testing.T) {
	placed, err := json.Marshal(entity.OrderPlaced{
		OrderID:         "ord-1",
		CustomerDetails: entity.CustomerDetails{Email: "sarah@example.com"},
		Items:           []entity.OrderItem{{ProductID: "prod-001", SellerID: "seller-001", Quantity: 1}},
		TotalAmount:     decimal.NewFromInt(1500),
	})
	require.NoError(t, err)
	changed, err := json.Marshal(entity.OrderStatusChanged{OrderID: "ord-1", From: entity.StatusPending, To: entity.StatusShipped})
	require.NoError(t, err)

	sub := &scriptedSubscriber{
		payloads: map[string][][]byte{
			messaging.TopicOrderPlaced:        {placed, []byte("garbage")},
			messaging.TopicOrderStatusChanged: {changed},
		},
		handled: make(chan string, 4),
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewNotificationService(sub).Run(ctx)
		close(done)
	}()

	got := map[string]int{}
	for i := 0; i < 2; i++ {
		select {
		case topic := <-sub.handled:
			got[topic]++
		case <-time.After(2 * time.Second):
			t.Fatal("handlers did not run")
		}
	}
	cancel()
	<-done

	assert.Equal(t, 1, got[messaging.TopicOrderPlaced], "undecodable payloads are rejected")
	assert.Equal(t, 1, got[messaging.TopicOrderStatusChanged])
}
