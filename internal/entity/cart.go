package entity

import (
	"github.com/shopspring/decimal"
)

// CartItem represents an item currently in a shopper's cart.
type CartItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image"`
	Quantity     int             `json:"quantity"`
	CountInStock int             `json:"countInStock"`
	Brand        string          `json:"brand,omitempty"`
	SellerID     string          `json:"sellerId,omitempty"`
}

// Subtotal is price times quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart holds the ordered line items of one session. Items are keyed by product id;
// insertion order is kept for display.
type Cart struct {
	SessionID string     `json:"sessionId"`
	Items     []CartItem `json:"items"`
}

// NewCart creates an empty cart for a session.
func NewCart(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Items: []CartItem{}}
}

func (c *Cart) indexOf(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Item returns the line for a product id.
func (c *Cart) Item(id string) (CartItem, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.Items[i], true
	}
	return CartItem{}, false
}

// AddItem merges quantity into the product's line, validating the new total against
// the product's current stock. A rejected add leaves the cart untouched.
func (c *Cart) AddItem(p Product, quantity int) error {
	if quantity < 1 {
		return NewValidationError("quantity", "must be at least 1", quantity)
	}
	if quantity > p.CountInStock {
		return NewStockExceededError(p.ID, quantity, p.CountInStock)
	}

	if i := c.indexOf(p.ID); i >= 0 {
		newQuantity := c.Items[i].Quantity + quantity
		if newQuantity > p.CountInStock {
			return NewStockExceededError(p.ID, newQuantity, p.CountInStock)
		}
		c.Items[i].Quantity = newQuantity
		c.Items[i].CountInStock = p.CountInStock
		return nil
	}

	c.Items = append(c.Items, CartItem{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price,
		Image:        p.Image,
		Quantity:     quantity,
		CountInStock: p.CountInStock,
		Brand:        p.Brand,
		SellerID:     p.SellerID,
	})
	return nil
}

// RemoveItem drops the line for id. Absent ids are ignored.
func (c *Cart) RemoveItem(id string) {
	if i := c.indexOf(id); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// UpdateQuantity sets the quantity of a line. Quantities below 1 remove the line;
// quantities above the stock snapshot are rejected.
func (c *Cart) UpdateQuantity(id string, quantity int) error {
	if quantity < 1 {
		c.RemoveItem(id)
		return nil
	}
	i := c.indexOf(id)
	if i < 0 {
		return nil
	}
	if quantity > c.Items[i].CountInStock {
		return NewStockExceededError(id, quantity, c.Items[i].CountInStock)
	}
	c.Items[i].Quantity = quantity
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
}

// Total is the sum of price*quantity, zero for an empty cart.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount is the sum of quantities.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Snapshot returns a copy of the lines that is safe to hand to checkout.
func (c *Cart) Snapshot() []CartItem {
	out := make([]CartItem, len(c.Items))
	copy(out, c.Items)
	return out
}
