package verification

import "errors"

var (
	// ErrTokenNotFound is returned when no unexpired token matches the
	// presented email and code pair.
	ErrTokenNotFound = errors.New("verification code or email is invalid")

	// ErrMissingParameter is returned when the email or code is empty.
	ErrMissingParameter = errors.New("verification code or email is missing")
)
