package models

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when a caller is not allowed to act on a
// resource: non-participant access, not-owner updates.
var ErrForbidden = errors.New("forbidden")

// ValidationError marks invariant violations in the request itself:
// self-contact, missing or ambiguous listing reference, malformed input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError from a format string
func Validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
