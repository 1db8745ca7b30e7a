// Package errs provides the generic error kinds shared by every service.
// Domain packages wrap these sentinels so transport layers can map them to
// status codes without knowing about individual business rules.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates rejected credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable indicates a dependency could not answer in time.
	ErrUnavailable = errors.New("unavailable")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// New returns an error whose message is message and which matches kind with errors.Is.
func New(kind error, message string) error {
	return &kindError{kind: kind, msg: message}
}

// Wrap wraps an error with additional context while preserving the error chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
