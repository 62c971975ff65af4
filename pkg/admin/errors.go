package admin

import "errors"

var (
	// ErrInvalidCredentials is returned when the email is unknown or the
	// password does not match. The two cases are deliberately not
	// distinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAuthorized is returned when the identity exists but carries no
	// admin claim.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrMailDelivery is returned when the mail relay rejects a send.
	ErrMailDelivery = errors.New("mail delivery failed")
)
