package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of every domain validation failure.
// Callers map anything wrapping it to an invalid-argument response.
var ErrValidation = errors.New("validation failed")

// Specific validation errors. Each wraps ErrValidation.
var (
	// ErrInvalidID is returned when an identifier is malformed or not positive.
	ErrInvalidID = fmt.Errorf("%w: invalid ID", ErrValidation)

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = fmt.Errorf("%w: invalid email format", ErrValidation)

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = fmt.Errorf("%w: content cannot be empty", ErrValidation)

	// ErrInvalidRole is returned when a role name is not ADMIN or USER.
	ErrInvalidRole = fmt.Errorf("%w: invalid role", ErrValidation)

	// ErrInvalidStatus is returned when a task status cannot be parsed.
	ErrInvalidStatus = fmt.Errorf("%w: invalid task status", ErrValidation)

	// ErrInvalidPriority is returned when a task priority cannot be parsed.
	ErrInvalidPriority = fmt.Errorf("%w: invalid task priority", ErrValidation)
)

// ValidationError describes a validation failure on a single field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel, falling back to ErrValidation.
func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrValidation
	}
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
// err should be one of the sentinels above; nil means ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
