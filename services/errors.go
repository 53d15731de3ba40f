package services

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError signals malformed or missing input (HTTP 400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError signals an absent referenced entity (HTTP 404).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// UnauthorizedError signals an ownership or role mismatch (HTTP 403).
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// InsufficientStockError names the offending product and how many units
// were actually available (HTTP 400).
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: available=%d requested=%d",
		e.ProductName, e.Available, e.Requested)
}

// PaymentVerificationError signals a webhook payload that failed signature
// verification or could not be parsed. The event is discarded (HTTP 400).
type PaymentVerificationError struct {
	Err error
}

func (e *PaymentVerificationError) Error() string {
	return fmt.Sprintf("payment verification failed: %v", e.Err)
}

func (e *PaymentVerificationError) Unwrap() error { return e.Err }

// TransitionError signals a status change that the transition table forbids
// (HTTP 400).
type TransitionError struct {
	Field string
	From  string
	To    string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal %s transition: %s -> %s", e.Field, e.From, e.To)
}
