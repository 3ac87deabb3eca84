package invoice

import (
	"errors"
	"fmt"
)

// Common invoice lifecycle errors
var (
	// ErrInvalidDraft is matched by every ValidationError returned from Finalize.
	ErrInvalidDraft = errors.New("draft is not ready to be finalized")

	// ErrNoUsableData is returned when a parser result carries nothing that can be merged.
	ErrNoUsableData = errors.New("parsed result contains no usable invoice data")

	// ErrMalformedParsedResult is returned when parser output is not a JSON object.
	ErrMalformedParsedResult = errors.New("malformed parsed result")
)

// ValidationError describes one field that blocks finalization.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Is lets errors.Is(err, ErrInvalidDraft) match any validation error.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidDraft
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ValidationErrors unpacks the individual field errors from an error returned by Finalize.
func ValidationErrors(err error) []*ValidationError {
	if err == nil {
		return nil
	}

	switch e := err.(type) {
	case *ValidationError:
		return []*ValidationError{e}
	case interface{ Unwrap() []error }:
		var out []*ValidationError
		for _, inner := range e.Unwrap() {
			out = append(out, ValidationErrors(inner)...)
		}
		return out
	}
	return ValidationErrors(errors.Unwrap(err))
}
