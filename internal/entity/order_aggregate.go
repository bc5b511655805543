package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event represents a domain event.
type Event interface {
	EventType() string
}

// EventStoreRecord represents an event stored in an aggregate stream.
type EventStoreRecord struct {
	ID         string    `json:"id"`
	StreamID   string    `json:"stream_id"`
	StreamType string    `json:"stream_type"`
	Version    int       `json:"version"`
	EventType  string    `json:"event_type"`
	Payload    []byte    `json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrderAggregate is the state of an order rebuilt by replaying its stream.
type OrderAggregate struct {
	ID          string
	Version     int
	Order       Order
	Transitions []OrderStatusChanged
}

// NewOrderAggregate creates an empty aggregate for an order stream.
func NewOrderAggregate(orderID string) *OrderAggregate {
	return &OrderAggregate{ID: orderID}
}

// ApplyEvent mutates the aggregate state based on the event.
func (a *OrderAggregate) ApplyEvent(e Event) error {
	switch e := e.(type) {
	case OrderPlaced:
		if a.Version != 0 {
			return fmt.Errorf("order %s already placed", a.ID)
		}
		a.Order = Order{
			ID:              e.OrderID,
			CustomerDetails: e.CustomerDetails,
			Items:           e.Items,
			TotalAmount:     e.TotalAmount,
			Status:          StatusPending,
			CreatedAt:       e.PlacedAt,
			UpdatedAt:       e.PlacedAt,
		}
	case OrderStatusChanged:
		if a.Version == 0 {
			return fmt.Errorf("status change for order %s before it was placed", a.ID)
		}
		a.Order.Status = e.To
		a.Order.UpdatedAt = e.ChangedAt
		a.Transitions = append(a.Transitions, e)
	default:
		return fmt.Errorf("unknown event type for OrderAggregate: %s", e.EventType())
	}
	a.Version++
	return nil
}

// Rehydrate rebuilds the aggregate from a list of records.
func (a *OrderAggregate) Rehydrate(records []EventStoreRecord) error {
	for _, rec := range records {
		var err error
		switch rec.EventType {
		case "OrderPlaced":
			var e OrderPlaced
			if err = json.Unmarshal(rec.Payload, &e); err == nil {
				err = a.ApplyEvent(e)
			}
		case "OrderStatusChanged":
			var e OrderStatusChanged
			if err = json.Unmarshal(rec.Payload, &e); err == nil {
				err = a.ApplyEvent(e)
			}
		default:
			return fmt.Errorf("unknown event type in order stream: %s", rec.EventType)
		}
		if err != nil {
			return fmt.Errorf("failed to apply order event v%d: %w", rec.Version, err)
		}
	}
	return nil
}
