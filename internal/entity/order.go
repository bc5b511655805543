package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is a step of the order lifecycle:
// pending -> processing -> shipped -> delivered, or pending|processing -> cancelled.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle step is expected.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// OrderItem is a frozen line item within an order.
type OrderItem struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
	SellerID  string          `json:"sellerId,omitempty"`
}

// Subtotal is price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a customer order.
type Order struct {
	ID              string           `json:"id"`
	CustomerDetails CustomerDetails  `json:"customerDetails"`
	Items           []OrderItem      `json:"items"`
	TotalAmount     decimal.Decimal  `json:"totalAmount"`
	SellerTotal     *decimal.Decimal `json:"sellerTotal,omitempty"`
	Status          OrderStatus      `json:"status"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// OrderItemsFromCart freezes cart lines into order lines.
func OrderItemsFromCart(items []CartItem) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, OrderItem{
			ProductID: item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
			SellerID:  item.SellerID,
		})
	}
	return out
}

// SumItems returns the sum of price*quantity.
func SumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ValidateItems checks order lines supplied from outside a cart.
func ValidateItems(items []OrderItem) error {
	if len(items) == 0 {
		return NewValidationError("items", "order must have at least one item", len(items))
	}
	for _, item := range items {
		if item.ProductID == "" {
			return NewValidationError("items.id", "cannot be empty", item.ProductID)
		}
		if item.Quantity < 1 {
			return NewValidationError("items.quantity", "must be at least 1", item.Quantity)
		}
		if item.Price.IsNegative() {
			return NewValidationError("items.price", "must be non-negative", item.Price.String())
		}
	}
	return nil
}

// SellerSubtotal sums the lines that belong to sellerID.
func (o Order) SellerSubtotal(sellerID string) (decimal.Decimal, bool) {
	total := decimal.Zero
	found := false
	for _, item := range o.Items {
		if item.SellerID == sellerID {
			total = total.Add(item.Subtotal())
			found = true
		}
	}
	return total, found
}

// ForSeller returns a copy of the order carrying the seller-scoped subtotal, or false
// when none of its lines belong to the seller.
func (o Order) ForSeller(sellerID string) (Order, bool) {
	subtotal, ok := o.SellerSubtotal(sellerID)
	if !ok {
		return Order{}, false
	}
	o.Items = append([]OrderItem(nil), o.Items...)
	o.SellerTotal = &subtotal
	return o, true
}

// PurchaseLine is one (product, quantity) pair submitted for stock reconciliation.
type PurchaseLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// ItemResult is the reconciliation outcome for one line.
type ItemResult struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}
