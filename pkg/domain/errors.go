package domain

import (
	"errors"
	"fmt"
)

// Error classes. Domain failures wrap one of the first three; store failures
// are reported as *StoreError.
var (
	// ErrValidation marks malformed identifiers or numeric fields.
	ErrValidation = errors.New("validation failed")
	// ErrPrecondition marks a well-formed request that is not a legal transition.
	ErrPrecondition = errors.New("precondition violated")
	// ErrNotFound marks a reference to a user or room that does not exist.
	ErrNotFound = errors.New("not found")
)

// Registration and unregistration failures.
var (
	ErrInvalidKey        = fmt.Errorf("invalid identifier: %w", ErrValidation)
	ErrInvalidAge        = fmt.Errorf("age must be a number: %w", ErrValidation)
	ErrInvalidName       = fmt.Errorf("name must not be empty: %w", ErrValidation)
	ErrAlreadyRegistered = fmt.Errorf("user with given identifier already exists: %w", ErrPrecondition)
	ErrNotRegistered     = fmt.Errorf("user with given identifier does not exist: %w", ErrNotFound)
)

// ValidationError describes a rejected field value.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Unwrap returns ErrValidation so callers can match with errors.Is.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// StoreError wraps a failure of the underlying document store. It is the only
// error class the hotel manager does not recover from.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("document store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsStoreError reports whether err carries a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// IsDomainError reports whether err is a recoverable domain failure
// (validation, precondition or not found).
func IsDomainError(err error) bool {
	if err == nil || IsStoreError(err) {
		return false
	}
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrPrecondition) || errors.Is(err, ErrNotFound)
}
