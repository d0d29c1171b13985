package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an id does not resolve to a record.
	ErrNotFound = errors.New("not found")

	// ErrOutOfStock is returned when a book cannot cover the requested quantity.
	ErrOutOfStock = errors.New("out of stock")

	// ErrInvalidTransition is returned when the status policy forbids an order
	// status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func outOfStock(title string, requested, available int) error {
	return fmt.Errorf("%w: %q requested %d, available %d", ErrOutOfStock, title, requested, available)
}
