package subscription

import "errors"

var (
	// ErrUnknownSubscriber is returned when a payment notification references
	// an email with no profile row.
	ErrUnknownSubscriber = errors.New("no profile found for subscriber")

	// ErrMalformedNotification is returned when the notification body cannot
	// be parsed.
	ErrMalformedNotification = errors.New("malformed payment notification")
)
