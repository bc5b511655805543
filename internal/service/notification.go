package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/messaging"
)

const notificationGroup = "petsupplies-notifications"

// NotificationService consumes order events and notifies the people involved.
// Delivery is a log line; no mail transport is wired.
type NotificationService struct {
	subscriber messaging.Subscriber
}

func NewNotificationService(subscriber messaging.Subscriber) *NotificationService {
	return &NotificationService{subscriber: subscriber}
}

// Run consumes both order topics until ctx is done.
func (s *NotificationService) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.subscriber.Consume(ctx, messaging.TopicOrderPlaced, notificationGroup, s.HandleOrderPlaced)
	}()
	go func() {
		defer wg.Done()
		s.subscriber.Consume(ctx, messaging.TopicOrderStatusChanged, notificationGroup, s.HandleOrderStatusChanged)
	}()
	wg.Wait()
}

func (s *NotificationService) HandleOrderPlaced(ctx context.Context, payload []byte) error {
	var event entity.OrderPlaced
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to decode OrderPlaced: %w", err)
	}

	sellers := map[string]bool{}
	for _, item := range event.Items {
		if item.SellerID != "" {
			sellers[item.SellerID] = true
		}
	}
	slog.Info("Notification: order confirmation",
		"order_id", event.OrderID,
		"to", event.CustomerDetails.Email,
		"total", event.TotalAmount.String(),
		"payment", event.CustomerDetails.PaymentMethod,
	)
	for sellerID := range sellers {
		slog.Info("Notification: new order for seller", "order_id", event.OrderID, "seller_id", sellerID)
	}
	return nil
}

func (s *NotificationService) HandleOrderStatusChanged(ctx context.Context, payload []byte) error {
	var event entity.OrderStatusChanged
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to decode OrderStatusChanged: %w", err)
	}
	slog.Info("Notification: order status changed", "order_id", event.OrderID, "from", event.From, "to", event.To)
	return nil
}
