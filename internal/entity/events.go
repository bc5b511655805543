package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event stream types.
const (
	StreamOrder = "order"
)

// OrderPlaced is emitted when checkout succeeds and the order is created.
type OrderPlaced struct {
	OrderID         string          `json:"order_id"`
	CustomerDetails CustomerDetails `json:"customer_details"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PlacedAt        time.Time       `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// OrderStatusChanged is emitted when a seller or operator sets a new status.
type OrderStatusChanged struct {
	OrderID   string      `json:"order_id"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedAt time.Time   `json:"changed_at"`
}

func (e OrderStatusChanged) EventType() string { return "OrderStatusChanged" }
