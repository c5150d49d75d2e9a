// Package apperror defines the domain error taxonomy shared by services and
// handlers. Services wrap these sentinels with context; handlers map them to
// HTTP status codes without string matching.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input that violates a domain rule (non-positive
	// quantity, oversell, overpayment, wrong fields for a task type).
	// Nothing is written when it is returned.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a missing referenced entity.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a transaction that could not commit because of a
	// concurrent conflicting write. Callers may retry a bounded number of
	// times; the retry must re-read, not replay stale state.
	ErrConflict = errors.New("write conflict")
)

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

// Conflictf wraps ErrConflict with a formatted message.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrConflict}, args...)...)
}

// IsValidation reports whether err is part of the validation class.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether err is part of the not-found class.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is part of the conflict class.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
