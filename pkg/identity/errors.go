package identity

import "errors"

var (
	// ErrIdentityNotFound is returned when no identity matches the lookup.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrEmailTaken is returned when creating an identity with an email that
	// already belongs to another account.
	ErrEmailTaken = errors.New("email already in use")

	// ErrPhoneNumberTaken is returned when the phone number belongs to
	// another identity.
	ErrPhoneNumberTaken = errors.New("phone number already in use")

	// ErrMissingPermissions is returned when admin claims are written without
	// a permission tier.
	ErrMissingPermissions = errors.New("admin claims require a permission tier")

	// ErrInvalidPermissions is returned when the permission tier is unknown.
	ErrInvalidPermissions = errors.New("unknown permission tier")
)
