package domain

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

func NewValidationError(message string) error {
	return &ValidationError{message: message}
}

// NewMissingFieldError creates a validation error for a required field
// that was not provided.
func NewMissingFieldError(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		message: fmt.Sprintf("%s is required", field),
	}
}

// NewInvalidFormatError creates a validation error for a malformed value.
func NewInvalidFormatError(field, value string) *ValidationError {
	return &ValidationError{
		Field:   field,
		message: fmt.Sprintf("%s has invalid format: %s", field, value),
	}
}

// NewOutOfRangeError creates a validation error for a value outside its
// allowed range.
func NewOutOfRangeError(field string, value, min, max int) *ValidationError {
	return &ValidationError{
		Field:   field,
		message: fmt.Sprintf("%s must be between %d and %d, got %d", field, min, max, value),
	}
}

// ValidationErrors aggregates per-field validation failures.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Fields returns the field names carried by the errors, preserving order.
func (e ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for _, err := range e {
		if err.Field != "" {
			fields = append(fields, err.Field)
		}
	}
	return fields
}
