package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrValidation         = errors.New("validation failed")
)

var (
	ErrOrderNotFound   = fmt.Errorf("order %w", ErrNotFound)
	ErrItemNotFound    = fmt.Errorf("order item %w", ErrNotFound)
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
)

// TransitionError reports a Cancel or Finalize attempted from a status that
// does not allow it. It matches ErrInvalidTransition with errors.Is.
type TransitionError struct {
	Operation string
	From      OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s order with status '%s'", e.Operation, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// validationError builds an ErrValidation-wrapped error for a single field.
func validationError(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}
