package identity

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// ClaimsService reads and writes the authorization state attached to an
// identity. Mutations become visible to already-issued credentials only on the
// next token refresh at the provider boundary; callers must not assume
// immediate consistency for outstanding sessions.
type ClaimsService struct {
	accounts AccountRepository
}

// NewClaimsService creates a new claims service.
func NewClaimsService(accounts AccountRepository) *ClaimsService {
	return &ClaimsService{accounts: accounts}
}

// SetAdminClaims validates and overwrites the whole claims payload. This is
// not a merge: the previous permission tier is replaced wholesale.
func (s *ClaimsService) SetAdminClaims(ctx context.Context, uid uuid.UUID, claims AuthorizationClaims) error {
	if err := claims.Validate(); err != nil {
		return err
	}

	if err := s.accounts.SetClaims(ctx, uid, claims); err != nil {
		slog.Error("Failed setting custom claims", "uid", uid, "err", err)
		return err
	}

	slog.Info("Custom claims updated", "uid", uid, "admin", claims.Admin, "permissions", claims.Permissions)
	return nil
}

// GetClaims returns the claims payload for an identity, nil when none is set.
func (s *ClaimsService) GetClaims(ctx context.Context, uid uuid.UUID) (*AuthorizationClaims, error) {
	id, err := s.accounts.GetIdentityByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return id.Claims, nil
}

// MarkEmailVerified sets the verified flag without touching other claims.
func (s *ClaimsService) MarkEmailVerified(ctx context.Context, uid uuid.UUID) error {
	return s.accounts.SetEmailVerified(ctx, uid, true)
}

// MarkEmailVerifiedByEmail sets the verified flag for the identity owning email.
func (s *ClaimsService) MarkEmailVerifiedByEmail(ctx context.Context, email string) error {
	return s.accounts.SetEmailVerifiedByEmail(ctx, email, true)
}
