package verification

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ezamazwe/admin-gateway/pkg/identity"
)

// Service issues and redeems single-use email verification tokens.
type Service struct {
	repo         TokenRepository
	claims       *identity.ClaimsService
	redirectBase string
	tokenExpiry  time.Duration
}

// ServiceOption defines configuration options.
type ServiceOption func(*Service)

// WithTokenExpiry sets the token expiration duration.
func WithTokenExpiry(expiry time.Duration) ServiceOption {
	return func(s *Service) {
		s.tokenExpiry = expiry
	}
}

// NewService creates a new verification service. redirectBase is the frontend
// URL verification links point at.
func NewService(repo TokenRepository, claims *identity.ClaimsService, redirectBase string, opts ...ServiceOption) *Service {
	service := &Service{
		repo:         repo,
		claims:       claims,
		redirectBase: strings.TrimRight(redirectBase, "/"),
		tokenExpiry:  24 * time.Hour,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// generateCode generates a cryptographically secure random code with 256 bits
// of entropy, rendered as hex.
func generateCode() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func buildLink(base, email, code string) string {
	params := url.Values{}
	params.Set("code", code)
	params.Set("email", email)
	return fmt.Sprintf("%s/?%s", strings.TrimRight(base, "/"), params.Encode())
}

// IssueVerificationLink generates a fresh code, persists it, and returns the
// shareable link. The token is stored before the link is returned so the email
// is never sent for a code that was not persisted. Issuing a new token
// invalidates prior outstanding tokens for the same address.
func (s *Service) IssueVerificationLink(ctx context.Context, email string) (string, error) {
	return s.issue(ctx, email, s.redirectBase+"/verify-email")
}

// IssueResetLink issues a token against a caller-provided redirect URL. Used
// by the password-reset flow, where the frontend supplies its own landing page.
func (s *Service) IssueResetLink(ctx context.Context, email, redirectURL string) (string, error) {
	return s.issue(ctx, email, redirectURL)
}

func (s *Service) issue(ctx context.Context, email, base string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	if err := s.repo.DeleteTokensByEmail(ctx, email); err != nil {
		slog.Error("Failed invalidating prior tokens", "email", email, "err", err)
		return "", fmt.Errorf("failed to invalidate prior tokens: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.tokenExpiry)
	token, err := s.repo.CreateToken(ctx, email, code, expiresAt)
	if err != nil {
		slog.Error("Failed persisting verification token", "email", email, "err", err)
		return "", fmt.Errorf("failed to persist verification token: %w", err)
	}

	slog.Info("Verification token issued", "email", email, "token_id", token.ID, "expires_at", expiresAt)
	return buildLink(base, email, code), nil
}

// Redeem validates a presented (email, code) pair exactly once. The code is
// meaningless without its paired email: both must match. On success the
// owning identity is marked verified and the token is consumed so the same
// code can never be redeemed twice.
func (s *Service) Redeem(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return ErrMissingParameter
	}

	// Conditional delete first: the store-level delete is the atomicity
	// point, so a concurrent redemption of the same pair loses here before
	// any claim is written.
	if err := s.repo.ConsumeToken(ctx, email, code); err != nil {
		return err
	}

	if err := s.claims.MarkEmailVerifiedByEmail(ctx, email); err != nil {
		slog.Error("Failed marking email verified after token consumption", "email", email, "err", err)
		return fmt.Errorf("failed to mark email verified: %w", err)
	}

	slog.Info("Email verified", "email", email)
	return nil
}

// CleanupExpiredTokens removes expired tokens from the store.
func (s *Service) CleanupExpiredTokens(ctx context.Context) error {
	if err := s.repo.CleanupExpiredTokens(ctx); err != nil {
		slog.Error("Failed cleaning up expired tokens", "err", err)
		return fmt.Errorf("failed to cleanup expired tokens: %w", err)
	}
	return nil
}
