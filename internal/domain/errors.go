package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrNoRecords     = errors.New("archive contains no records")
	ErrCorrupt       = errors.New("corrupt data")
)

// CorruptDataError reports a stored record whose payload cannot be decoded,
// either because the kind discriminant is unknown or because the payload
// fails to deserialize for its declared kind.
type CorruptDataError struct {
	Kind   RecordKind
	Reason string
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt record: kind %d: %s", e.Kind, e.Reason)
}

func (e *CorruptDataError) Unwrap() error { return ErrCorrupt }

// NewCorruptDataError creates a CorruptDataError for the given kind.
func NewCorruptDataError(kind RecordKind, reason string) *CorruptDataError {
	return &CorruptDataError{Kind: kind, Reason: reason}
}

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
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
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
