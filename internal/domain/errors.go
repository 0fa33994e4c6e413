package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput signals a caller error: malformed coordinates, bad options, etc.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedScope signals an identifier scope shape the resolver does not know.
	ErrUnsupportedScope = fmt.Errorf("%w: unsupported scope", ErrInvalidInput)
	// ErrNotFound signals a missing document or index.
	ErrNotFound = errors.New("not found")
	// ErrBackendUnavailable signals that the search backend could not be reached.
	ErrBackendUnavailable = errors.New("search backend unavailable")
	// ErrCursorExpired signals a scroll cursor whose idle budget elapsed.
	ErrCursorExpired = errors.New("scroll cursor expired")
	// ErrCursorClosed signals use of an iterator after Close.
	ErrCursorClosed = errors.New("scroll cursor closed")
)

// InvalidInputError names the offending parameter of a caller error.
type InvalidInputError struct {
	Param  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput.Error(), e.Param, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// NewInvalidInput creates a caller error for the given parameter.
func NewInvalidInput(param, reason string) error {
	return &InvalidInputError{Param: param, Reason: reason}
}
