// Package common defines the error kinds shared by the repository, service
// and handler layers. Callers match them with errors.Is.
package common

import "errors"

var (
	// ErrAuthRequired means the request carries no usable identity.
	ErrAuthRequired = errors.New("authentication required")

	// ErrNotFound covers both missing entities and entities the caller is not
	// allowed to see.
	ErrNotFound = errors.New("not found")

	ErrAlreadyVoted       = errors.New("already voted")
	ErrAlreadyExists      = errors.New("already exists")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInternal hides store and infrastructure failures from clients.
	ErrInternal = errors.New("internal error")
)

// Error attaches a client-facing message to one of the error kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError returns an error that matches kind and reports msg to clients.
func NewError(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Message returns the client-facing message of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
