package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")

	// ErrStaleReference means a selection no longer matches the session
	// snapshot or the referenced row is gone.
	ErrStaleReference = errors.New("stale reference")
	// ErrUnexpectedAction means an action arrived while the session was in a
	// state that does not consume it.
	ErrUnexpectedAction = errors.New("unexpected action")

	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUserNotFound      = errors.New("user not found")
	ErrAmbiguousUser     = errors.New("ambiguous user")

	ErrNoArtworks = errors.New("no artworks registered")
	ErrNoPaper    = errors.New("no paper in stock")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s — %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// InsufficientStockError reports a request for more copies than a stock
// line currently holds.
type InsufficientStockError struct {
	PaperID   int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("paper %d: requested %d, available %d", e.PaperID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ResolutionError reports a user query that did not resolve to exactly one
// user. Candidates is empty for a miss.
type ResolutionError struct {
	Query      string
	Candidates []User
}

func (e *ResolutionError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("resolve %q: no match", e.Query)
	}
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = c.Handle()
	}
	return fmt.Sprintf("resolve %q: %d matches (%s)", e.Query, len(e.Candidates), strings.Join(names, ", "))
}

func (e *ResolutionError) Unwrap() error {
	if len(e.Candidates) == 0 {
		return ErrUserNotFound
	}
	return ErrAmbiguousUser
}
