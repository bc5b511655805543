package entity

import (
	"strings"
	"time"
)

// Seller is a vendor account that owns products.
type Seller struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone,omitempty"`
	Address            string    `json:"address,omitempty"`
	BusinessType       string    `json:"businessType,omitempty"`
	Logo               string    `json:"logo,omitempty"`
	RegistrationNumber string    `json:"registrationNumber,omitempty"`
	JoinedAt           time.Time `json:"joinedDate"`
	PasswordHash       []byte    `json:"-"`
}

// SellerRegistration is the input of seller sign-up.
type SellerRegistration struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	BusinessType string `json:"businessType"`
}

// Validate checks the fields required to open an account.
func (r SellerRegistration) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return NewValidationError("name", "is required", r.Name)
	}
	if strings.TrimSpace(r.Email) == "" {
		return NewValidationError("email", "is required", r.Email)
	}
	if len(r.Password) < 6 {
		return NewValidationError("password", "must be at least 6 characters", "")
	}
	return nil
}
