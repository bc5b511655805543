package entity

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError is returned when a product, order, review or seller does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: id=%s", e.Resource, e.ID)
}

// Is allows errors.Is matching on the error type.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ValidationError is returned when input (a review, a form, a quantity) is malformed.
type ValidationError struct {
	Field  string
	Reason string
	Value  any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s (value=%v)", e.Field, e.Reason, e.Value)
}

// Is allows errors.Is matching on the error type.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// StockExceededError is returned when a cart operation would exceed available stock.
type StockExceededError struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("stock exceeded for product %s: requested %d, only %d available", e.ProductID, e.Requested, e.Available)
}

// Is allows errors.Is matching on the error type.
func (e *StockExceededError) Is(target error) bool {
	_, ok := target.(*StockExceededError)
	return ok
}

// InsufficientStockError is returned when a stock decrement loses at checkout time.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (available: %d, requested: %d)", e.ProductID, e.Available, e.Requested)
}

// Is allows errors.Is matching on the error type.
func (e *InsufficientStockError) Is(target error) bool {
	_, ok := target.(*InsufficientStockError)
	return ok
}

// AuthenticationRequiredError is returned for seller-only operations without a valid session.
type AuthenticationRequiredError struct {
	Reason string
}

func (e *AuthenticationRequiredError) Error() string {
	if e.Reason == "" {
		return "authentication required"
	}
	return "authentication required: " + e.Reason
}

// Is allows errors.Is matching on the error type.
func (e *AuthenticationRequiredError) Is(target error) bool {
	_, ok := target.(*AuthenticationRequiredError)
	return ok
}

// CheckoutError reports a checkout where at least one line item could not be purchased.
// Results holds every line, successful ones included, so callers can render a breakdown.
type CheckoutError struct {
	Results []ItemResult
}

// Failed returns only the lines that could not be purchased.
func (e *CheckoutError) Failed() []ItemResult {
	var out []ItemResult
	for _, r := range e.Results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}

func (e *CheckoutError) Error() string {
	failed := e.Failed()
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s (%s)", r.Name, r.Message))
	}
	return "Some items could not be purchased: " + strings.Join(parts, ", ")
}

// Unwrap exposes the per-item causes to errors.Is and errors.As.
func (e *CheckoutError) Unwrap() []error {
	var errs []error
	for _, r := range e.Results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, reason string, value any) error {
	return &ValidationError{Field: field, Reason: reason, Value: value}
}

// NewStockExceededError creates a new StockExceededError
func NewStockExceededError(productID string, requested, available int) error {
	return &StockExceededError{ProductID: productID, Requested: requested, Available: available}
}

// NewInsufficientStockError creates a new InsufficientStockError
func NewInsufficientStockError(productID string, requested, available int) error {
	return &InsufficientStockError{ProductID: productID, Requested: requested, Available: available}
}

// NewAuthenticationRequiredError creates a new AuthenticationRequiredError
func NewAuthenticationRequiredError(reason string) error {
	return &AuthenticationRequiredError{Reason: reason}
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsStockExceeded checks if an error is a StockExceededError
func IsStockExceeded(err error) bool {
	var e *StockExceededError
	return errors.As(err, &e)
}

// IsInsufficientStock checks if an error is an InsufficientStockError
func IsInsufficientStock(err error) bool {
	var e *InsufficientStockError
	return errors.As(err, &e)
}

// IsAuthenticationRequired checks if an error is an AuthenticationRequiredError
func IsAuthenticationRequired(err error) bool {
	var e *AuthenticationRequiredError
	return errors.As(err, &e)
}
