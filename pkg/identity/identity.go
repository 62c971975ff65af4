package identity

import (
	"time"

	"github.com/google/uuid"
)

// Permission is the admin permission tier carried in custom claims.
type Permission string

const (
	PermissionOwner  Permission = "owner"
	PermissionEditor Permission = "editor"
)

// IsValid reports whether p is a known permission tier.
func (p Permission) IsValid() bool {
	switch p {
	case PermissionOwner, PermissionEditor:
		return true
	}
	return false
}

// AuthorizationClaims is the authorization payload attached to an identity.
// Writes replace the whole payload; callers supply the complete desired state.
type AuthorizationClaims struct {
	Admin              bool       `json:"admin"`
	Permissions        Permission `json:"permissions,omitempty"`
	ForcePasswordReset bool       `json:"forcePasswordReset"`
}

// Validate checks the claims invariants: permissions must be a known tier and
// must not be absent when the admin flag is set.
func (c AuthorizationClaims) Validate() error {
	if c.Admin && c.Permissions == "" {
		return ErrMissingPermissions
	}
	if c.Permissions != "" && !c.Permissions.IsValid() {
		return ErrInvalidPermissions
	}
	return nil
}

// Identity is one account in the identity store.
type Identity struct {
	UID            uuid.UUID            `json:"uid"`
	Email          string               `json:"email"`
	DisplayName    string               `json:"displayName,omitempty"`
	PhoneNumber    string               `json:"phoneNumber,omitempty"`
	EmailVerified  bool                 `json:"emailVerified"`
	Claims         *AuthorizationClaims `json:"customClaims,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	LastModifiedAt time.Time            `json:"lastModifiedAt"`

	// PasswordHash is the bcrypt hash of the account password. Never serialized.
	PasswordHash string `json:"-"`
}

// CreateIdentityParams carries the attributes for a new identity.
type CreateIdentityParams struct {
	Email         string
	DisplayName   string
	PhoneNumber   string
	PasswordHash  string
	EmailVerified bool
}
