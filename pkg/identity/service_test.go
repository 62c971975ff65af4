package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClaimsService(t *testing.T) (*ClaimsService, *Identity) {
	repo := NewInMemoryAccountRepository()
	service := NewClaimsService(repo)

	id, err := repo.CreateIdentity(context.Background(), CreateIdentityParams{
		Email:        "admin@example.com",
		DisplayName:  "Admin",
		PasswordHash: "$2a$10$hash",
	})
	require.NoError(t, err)

	return service, id
}

func TestSetAdminClaims(t *testing.T) {
	service, id := setupClaimsService(t)
	ctx := context.Background()

	claims := AuthorizationClaims{
		Admin:              true,
		Permissions:        PermissionEditor,
		ForcePasswordReset: true,
	}
	err := service.SetAdminClaims(ctx, id.UID, claims)
	require.NoError(t, err)

	stored, err := service.GetClaims(ctx, id.UID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Admin)
	assert.Equal(t, PermissionEditor, stored.Permissions)
	assert.True(t, stored.ForcePasswordReset)
}

func TestSetAdminClaims_Overwrite(t *testing.T) {
	service, id := setupClaimsService(t)
	ctx := context.Background()

	err := service.SetAdminClaims(ctx, id.UID, AuthorizationClaims{
		Admin:              true,
		Permissions:        PermissionEditor,
		ForcePasswordReset: true,
	})
	require.NoError(t, err)

	// A later write replaces the payload wholesale, nothing is merged.
	err = service.SetAdminClaims(ctx, id.UID, AuthorizationClaims{
		Admin:       true,
		Permissions: PermissionOwner,
	})
	require.NoError(t, err)

	stored, err := service.GetClaims(ctx, id.UID)
	require.NoError(t, err)
	assert.Equal(t, PermissionOwner, stored.Permissions)
	assert.False(t, stored.ForcePasswordReset)
}

func TestSetAdminClaims_Idempotent(t *testing.T) {
	service, id := setupClaimsService(t)
	ctx := context.Background()

	claims := AuthorizationClaims{
		Admin:       true,
		Permissions: PermissionOwner,
	}

	require.NoError(t, service.SetAdminClaims(ctx, id.UID, claims))
	first, err := service.GetClaims(ctx, id.UID)
	require.NoError(t, err)

	require.NoError(t, service.SetAdminClaims(ctx, id.UID, claims))
	second, err := service.GetClaims(ctx, id.UID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSetAdminClaims_Validation(t *testing.T) {
	service, id := setupClaimsService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		claims  AuthorizationClaims
		wantErr error
	}{
		{
			name:    "admin without permissions",
			claims:  AuthorizationClaims{Admin: true},
			wantErr: ErrMissingPermissions,
		},
		{
			name:    "unknown permission tier",
			claims:  AuthorizationClaims{Admin: true, Permissions: "superuser"},
			wantErr: ErrInvalidPermissions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.SetAdminClaims(ctx, id.UID, tt.claims)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Nothing was stored by the rejected writes.
	stored, err := service.GetClaims(ctx, id.UID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestSetAdminClaims_UnknownIdentity(t *testing.T) {
	service, _ := setupClaimsService(t)

	err := service.SetAdminClaims(context.Background(), uuid.New(), AuthorizationClaims{
		Admin:       true,
		Permissions: PermissionEditor,
	})
	assert.ErrorIs(t, err, ErrIdentityNotFound)
}

func TestMarkEmailVerified(t *testing.T) {
	repo := NewInMemoryAccountRepository()
	service := NewClaimsService(repo)
	ctx := context.Background()

	id, err := repo.CreateIdentity(ctx, CreateIdentityParams{
		Email:        "verify@example.com",
		PasswordHash: "$2a$10$hash",
	})
	require.NoError(t, err)
	require.False(t, id.EmailVerified)

	require.NoError(t, service.SetAdminClaims(ctx, id.UID, AuthorizationClaims{
		Admin:       true,
		Permissions: PermissionEditor,
	}))

	require.NoError(t, service.MarkEmailVerified(ctx, id.UID))

	updated, err := repo.GetIdentityByUID(ctx, id.UID)
	require.NoError(t, err)
	assert.True(t, updated.EmailVerified)
	// Claims are untouched by the verified flag.
	require.NotNil(t, updated.Claims)
	assert.Equal(t, PermissionEditor, updated.Claims.Permissions)
}

func TestCreateIdentity_Uniqueness(t *testing.T) {
	repo := NewInMemoryAccountRepository()
	ctx := context.Background()

	_, err := repo.CreateIdentity(ctx, CreateIdentityParams{
		Email:        "taken@example.com",
		PhoneNumber:  "+27110000000",
		PasswordHash: "$2a$10$hash",
	})
	require.NoError(t, err)

	_, err = repo.CreateIdentity(ctx, CreateIdentityParams{
		Email:        "taken@example.com",
		PasswordHash: "$2a$10$hash",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = repo.CreateIdentity(ctx, CreateIdentityParams{
		Email:        "other@example.com",
		PhoneNumber:  "+27110000000",
		PasswordHash: "$2a$10$hash",
	})
	assert.ErrorIs(t, err, ErrPhoneNumberTaken)
}
