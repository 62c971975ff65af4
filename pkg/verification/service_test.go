package verification

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezamazwe/admin-gateway/pkg/identity"
)

func setupVerificationService(t *testing.T, opts ...ServiceOption) (*Service, identity.AccountRepository) {
	accounts := identity.NewInMemoryAccountRepository()
	claims := identity.NewClaimsService(accounts)
	tokens := NewInMemoryTokenRepository()
	service := NewService(tokens, claims, "https://dashboard.example.com", opts...)
	return service, accounts
}

func createAccount(t *testing.T, accounts identity.AccountRepository, email string) {
	_, err := accounts.CreateIdentity(context.Background(), identity.CreateIdentityParams{
		Email:        email,
		PasswordHash: "$2a$10$hash",
	})
	require.NoError(t, err)
}

func extractCode(t *testing.T, link string) string {
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	code := parsed.Query().Get("code")
	require.NotEmpty(t, code)
	return code
}

func TestIssueVerificationLink(t *testing.T) {
	service, accounts := setupVerificationService(t)
	ctx := context.Background()
	createAccount(t, accounts, "user@example.com")

	link, err := service.IssueVerificationLink(ctx, "user@example.com")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(link, "https://dashboard.example.com/verify-email/?"), link)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", parsed.Query().Get("email"))

	// 32 random bytes rendered hex.
	code := parsed.Query().Get("code")
	assert.Len(t, code, 64)
}

func TestIssueResetLink(t *testing.T) {
	service, accounts := setupVerificationService(t)
	createAccount(t, accounts, "user@example.com")

	link, err := service.IssueResetLink(context.Background(), "user@example.com", "https://app.example.com/reset")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://app.example.com/reset/?"), link)
}

func TestRedeem_SingleUse(t *testing.T) {
	service, accounts := setupVerificationService(t)
	ctx := context.Background()
	createAccount(t, accounts, "user@example.com")

	link, err := service.IssueVerificationLink(ctx, "user@example.com")
	require.NoError(t, err)
	code := extractCode(t, link)

	require.NoError(t, service.Redeem(ctx, "user@example.com", code))

	id, err := accounts.GetIdentityByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.True(t, id.EmailVerified)

	// The consumed code can never be redeemed again.
	err = service.Redeem(ctx, "user@example.com", code)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRedeem_CrossEmailRejected(t *testing.T) {
	service, accounts := setupVerificationService(t)
	ctx := context.Background()
	createAccount(t, accounts, "alice@example.com")
	createAccount(t, accounts, "bob@example.com")

	link, err := service.IssueVerificationLink(ctx, "alice@example.com")
	require.NoError(t, err)
	code := extractCode(t, link)

	// A valid code presented with a different email must not redeem.
	err = service.Redeem(ctx, "bob@example.com", code)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	// Alice's token is still intact.
	require.NoError(t, service.Redeem(ctx, "alice@example.com", code))
}

func TestRedeem_MissingParameters(t *testing.T) {
	service, _ := setupVerificationService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		email string
		code  string
	}{
		{"missing email", "", "deadbeef"},
		{"missing code", "user@example.com", ""},
		{"missing both", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.Redeem(ctx, tt.email, tt.code)
			assert.ErrorIs(t, err, ErrMissingParameter)
		})
	}
}

func TestRedeem_UnknownCode(t *testing.T) {
	service, _ := setupVerificationService(t)

	err := service.Redeem(context.Background(), "user@example.com", "not-a-code")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestReissueInvalidatesPriorToken(t *testing.T) {
	service, accounts := setupVerificationService(t)
	ctx := context.Background()
	createAccount(t, accounts, "user@example.com")

	first, err := service.IssueVerificationLink(ctx, "user@example.com")
	require.NoError(t, err)
	second, err := service.IssueVerificationLink(ctx, "user@example.com")
	require.NoError(t, err)

	err = service.Redeem(ctx, "user@example.com", extractCode(t, first))
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, service.Redeem(ctx, "user@example.com", extractCode(t, second)))
}

func TestRedeem_ExpiredToken(t *testing.T) {
	service, accounts := setupVerificationService(t, WithTokenExpiry(-time.Minute))
	ctx := context.Background()
	createAccount(t, accounts, "user@example.com")

	link, err := service.IssueVerificationLink(ctx, "user@example.com")
	require.NoError(t, err)

	err = service.Redeem(ctx, "user@example.com", extractCode(t, link))
	assert.ErrorIs(t, err, ErrTokenNotFound)
}
