package domain

import (
	"errors"
	"fmt"
)

// ValidationError signals that a business precondition rejected a command.
// No event is produced and the aggregate state is unchanged when one is
// returned; callers surface it verbatim instead of retrying.
type ValidationError struct {
	reason string
}

// NewValidationError creates a ValidationError with the given reason.
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{reason: reason}
}

// NewValidationErrorf creates a ValidationError with a formatted reason.
func NewValidationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{reason: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.reason
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
