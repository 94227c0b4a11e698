package core

import (
	"errors"
	"fmt"
)

// Sentinel errors. Packages wrap these with fmt.Errorf("...: %w", ...) so that
// callers can classify failures with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidSchema = errors.New("invalid schema")
	ErrValidation    = errors.New("validation failed")
	ErrInjectedFault = errors.New("injected fault")
	ErrIO            = errors.New("document io failure")
)

// UnknownConnectionCode is reported when a connection id has no registry entry.
const UnknownConnectionCode = "UNKNOWN_CONNECTION_ID"

// ValidationError describes a single rejected input value.
type ValidationError struct {
	Field   string // Field or parameter name
	Value   string // The rejected value
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is reports ValidationError as ErrValidation.
func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}
