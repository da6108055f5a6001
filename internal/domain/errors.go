package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Error types for consistent error handling across the BFA.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrInsufficientBalance indicates a distribution larger than the
// remaining amount of its fund request.
type ErrInsufficientBalance struct {
	FundRequestID string
	Available     decimal.Decimal
	Required      decimal.Decimal
}

func (e *ErrInsufficientBalance) Error() string {
	return fmt.Sprintf("insufficient balance on fund request %s: available=%s required=%s",
		e.FundRequestID, e.Available.StringFixed(2), e.Required.StringFixed(2))
}

// ErrInvalidState indicates an operation that is not allowed from the
// current lifecycle status of a record.
type ErrInvalidState struct {
	Resource string
	ID       string
	Status   string
	Expected string
}

func (e *ErrInvalidState) Error() string {
	return fmt.Sprintf("%s %s is %s, expected %s", e.Resource, e.ID, e.Status, e.Expected)
}

// ErrConflict indicates a duplicate resource or a lost concurrent update.
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrQuery indicates a failed read against the record store.
type ErrQuery struct {
	Collection string
	Err        error
}

func (e *ErrQuery) Error() string {
	return fmt.Sprintf("query %s failed: %v", e.Collection, e.Err)
}

func (e *ErrQuery) Unwrap() error {
	return e.Err
}

// ErrWrite indicates a failed insert/update against the record store.
type ErrWrite struct {
	Collection string
	Err        error
}

func (e *ErrWrite) Error() string {
	return fmt.Sprintf("write %s failed: %v", e.Collection, e.Err)
}

func (e *ErrWrite) Unwrap() error {
	return e.Err
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrForbidden indicates the user lacks permission for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}
