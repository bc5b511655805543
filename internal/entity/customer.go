package entity

import (
	"net/mail"
	"strings"
)

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentCard           PaymentMethod = "card"
)

// CustomerDetails are the delivery and contact fields captured at checkout.
type CustomerDetails struct {
	FullName        string        `json:"fullName"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	Address         string        `json:"address"`
	City            string        `json:"city"`
	PostalCode      string        `json:"postalCode"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	AdditionalNotes string        `json:"additionalNotes,omitempty"`
}

// Validate returns a ValidationError naming the first invalid field.
func (d CustomerDetails) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"fullName", d.FullName},
		{"email", d.Email},
		{"phone", d.Phone},
		{"address", d.Address},
		{"city", d.City},
		{"postalCode", d.PostalCode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return NewValidationError(r.field, "is required", r.value)
		}
	}
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return NewValidationError("email", "is not a valid address", d.Email)
	}
	switch d.PaymentMethod {
	case PaymentCashOnDelivery, PaymentCard:
	default:
		return NewValidationError("paymentMethod", "must be cod or card", d.PaymentMethod)
	}
	return nil
}
