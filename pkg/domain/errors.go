package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used to classify DomainError instances.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state transition")
	ErrGateway      = errors.New("payment gateway error")
	ErrSignature    = errors.New("signature verification failed")
)

// DomainError wraps a sentinel error with a human-readable message.
type DomainError struct {
	Err     error
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports that an entity could not be located.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// NewValidationError reports invalid or missing input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Err: ErrValidation, Message: message}
}

// NewConflictError reports a request that conflicts with current state,
// e.g. cancelling an already-cancelled booking.
func NewConflictError(message string) *DomainError {
	return &DomainError{Err: ErrConflict, Message: message}
}

// NewInvalidStateError reports an illegal state machine transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidState,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewGatewayError wraps an upstream payment-processor failure.
func NewGatewayError(message string) *DomainError {
	return &DomainError{Err: ErrGateway, Message: message}
}

// NewSignatureError reports a webhook signature that could not be verified.
func NewSignatureError(message string) *DomainError {
	return &DomainError{Err: ErrSignature, Message: message}
}
