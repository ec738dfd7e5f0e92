// ABOUTME: Error taxonomy for the prioritization pipeline
// ABOUTME: Validation and persistence failures surface; conflicts are control flow
package prioritize

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrPersistence          = errors.New("failed to save prioritization")
	ErrConfirmationRequired = errors.New("an existing prioritization must be confirmed before it is overwritten")
)

// ValidationError names the offending input. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
