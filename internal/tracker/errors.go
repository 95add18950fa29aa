package tracker

import "errors"

var (
	// ErrUserNotFound is reported to clients as a soft error: a 200 response
	// carrying {"error":"User not found"}.
	ErrUserNotFound = errors.New("User not found")
	// ErrUsernameTaken is returned when the store rejects a duplicate username.
	ErrUsernameTaken = errors.New("Username already exists")
)

// ValidationError describes missing or malformed client input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
