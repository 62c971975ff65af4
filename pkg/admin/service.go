package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ezamazwe/admin-gateway/pkg/auth"
	"github.com/ezamazwe/admin-gateway/pkg/identity"
	"github.com/ezamazwe/admin-gateway/pkg/notice"
	"github.com/ezamazwe/admin-gateway/pkg/notification"
	"github.com/ezamazwe/admin-gateway/pkg/verification"
)

// AdminService orchestrates the admin account lifecycle: login, account
// creation, password reset, role grants, and the email flows around them.
type AdminService struct {
	accounts      identity.AccountRepository
	claims        *identity.ClaimsService
	tokens        *verification.Service
	notifier      *notification.NotificationManager
	jwt           *auth.Jwt
	loginURL      string
	infoDeskEmail string
	passwordLen   int
}

// AdminServiceOption defines configuration options.
type AdminServiceOption func(*AdminService)

// WithLoginURL sets the dashboard login URL included in account emails.
func WithLoginURL(url string) AdminServiceOption {
	return func(s *AdminService) {
		s.loginURL = url
	}
}

// WithInfoDeskEmail sets the recipient of contact-form relays.
func WithInfoDeskEmail(email string) AdminServiceOption {
	return func(s *AdminService) {
		s.infoDeskEmail = email
	}
}

// NewAdminService creates a new admin service.
func NewAdminService(
	accounts identity.AccountRepository,
	claims *identity.ClaimsService,
	tokens *verification.Service,
	notifier *notification.NotificationManager,
	jwtService *auth.Jwt,
	opts ...AdminServiceOption,
) *AdminService {
	service := &AdminService{
		accounts:    accounts,
		claims:      claims,
		tokens:      tokens,
		notifier:    notifier,
		jwt:         jwtService,
		passwordLen: 12,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// LoginResult carries the outcome of an authorized login. The force-reset and
// permission fields drive the dashboard's forced-reset flow; they are not
// enforced server-side on this path.
type LoginResult struct {
	UID                 uuid.UUID
	Permissions         identity.Permission
	ForcePasswordChange bool
	Token               string
}

// Login authorizes an admin by email and password. The password is verified
// against the stored hash; an unknown email and a wrong password both come
// back as ErrInvalidCredentials.
func (s *AdminService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	id, err := s.accounts.GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrIdentityNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	valid, err := CheckPasswordHash(password, id.PasswordHash)
	if err != nil || !valid {
		return nil, ErrInvalidCredentials
	}

	claims, err := s.claims.GetClaims(ctx, id.UID)
	if err != nil {
		return nil, err
	}
	if claims == nil || !claims.Admin {
		slog.Warn("Login rejected, no admin claim", "email", email)
		return nil, ErrNotAuthorized
	}

	token, err := s.jwt.CreateAdminToken(id.UID, id.Email, string(claims.Permissions))
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		UID:                 id.UID,
		Permissions:         claims.Permissions,
		ForcePasswordChange: claims.ForcePasswordReset,
		Token:               token,
	}, nil
}

// CreateAdmin provisions a new admin account: random password, editor claims
// with a forced reset, and the account email. Every step completes before the
// caller is answered.
func (s *AdminService) CreateAdmin(ctx context.Context, email, name, phoneNumber string) (*identity.Identity, error) {
	password, err := GenerateRandomPassword(s.passwordLen)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	id, err := s.accounts.CreateIdentity(ctx, identity.CreateIdentityParams{
		Email:         email,
		DisplayName:   name,
		PhoneNumber:   phoneNumber,
		PasswordHash:  hash,
		EmailVerified: false,
	})
	if err != nil {
		slog.Error("Failed creating admin identity", "email", email, "err", err)
		return nil, err
	}

	err = s.claims.SetAdminClaims(ctx, id.UID, identity.AuthorizationClaims{
		Admin:              true,
		Permissions:        identity.PermissionEditor,
		ForcePasswordReset: true,
	})
	if err != nil {
		return nil, err
	}

	err = s.notifier.Send(notice.AdminPasswordNotice, notification.NotificationData{
		To: email,
		Data: map[string]string{
			"Password": password,
			"LoginURL": s.loginURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	return s.accounts.GetIdentityByUID(ctx, id.UID)
}

// UpdatePhoneNumber changes an identity's phone number, rejecting numbers
// that already belong to another identity.
func (s *AdminService) UpdatePhoneNumber(ctx context.Context, uid uuid.UUID, phoneNumber string) error {
	if phoneNumber != "" {
		existing, err := s.accounts.GetIdentityByPhone(ctx, phoneNumber)
		if err == nil && existing.UID != uid {
			return identity.ErrPhoneNumberTaken
		}
		if err != nil && !errors.Is(err, identity.ErrIdentityNotFound) {
			return err
		}
	}

	return s.accounts.UpdatePhoneNumber(ctx, uid, phoneNumber)
}

// CompletePasswordReset finishes the password-update flow for an admin:
// notify by email, clear the forced-reset flag keeping the permission tier,
// and mark the email verified. Returns the resulting claims.
func (s *AdminService) CompletePasswordReset(ctx context.Context, email string) (*identity.AuthorizationClaims, error) {
	err := s.notifier.Send(notice.PasswordUpdateNotice, notification.NotificationData{To: email})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	id, err := s.accounts.GetIdentityByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	permissions := identity.PermissionEditor
	if id.Claims != nil && id.Claims.Permissions != "" {
		permissions = id.Claims.Permissions
	}

	err = s.claims.SetAdminClaims(ctx, id.UID, identity.AuthorizationClaims{
		Admin:              true,
		Permissions:        permissions,
		ForcePasswordReset: false,
	})
	if err != nil {
		return nil, err
	}

	if err := s.claims.MarkEmailVerified(ctx, id.UID); err != nil {
		return nil, err
	}

	return s.claims.GetClaims(ctx, id.UID)
}

// InitPasswordReset issues a reset link against the caller-provided redirect
// URL and emails it.
func (s *AdminService) InitPasswordReset(ctx context.Context, email, redirectURL string) error {
	link, err := s.tokens.IssueResetLink(ctx, email, redirectURL)
	if err != nil {
		return err
	}

	err = s.notifier.Send(notice.PasswordResetNotice, notification.NotificationData{
		To:   email,
		Data: map[string]string{"Link": link},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	return nil
}

// SendVerificationEmail issues a verification link and emails it. The link is
// returned to the caller as well. The token is persisted before any email
// goes out; a store failure means nothing was sent.
func (s *AdminService) SendVerificationEmail(ctx context.Context, email string) (string, error) {
	link, err := s.tokens.IssueVerificationLink(ctx, email)
	if err != nil {
		return "", err
	}

	err = s.notifier.Send(notice.EmailVerificationNotice, notification.NotificationData{
		To:   email,
		Data: map[string]string{"Link": link},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	return link, nil
}

// VerifyEmail redeems a (email, code) pair exactly once.
func (s *AdminService) VerifyEmail(ctx context.Context, email, code string) error {
	return s.tokens.Redeem(ctx, email, code)
}

// GrantAdminRole grants the admin claim with the owner tier. The claims
// payload is overwritten wholesale.
func (s *AdminService) GrantAdminRole(ctx context.Context, email string) error {
	id, err := s.accounts.GetIdentityByEmail(ctx, email)
	if err != nil {
		return err
	}

	return s.claims.SetAdminClaims(ctx, id.UID, identity.AuthorizationClaims{
		Admin:              true,
		Permissions:        identity.PermissionOwner,
		ForcePasswordReset: false,
	})
}

// ListUsers returns every identity in the store.
func (s *AdminService) ListUsers(ctx context.Context) ([]*identity.Identity, error) {
	return s.accounts.ListIdentities(ctx)
}

// DeleteUser removes an identity by uid.
func (s *AdminService) DeleteUser(ctx context.Context, uid uuid.UUID) error {
	return s.accounts.DeleteIdentity(ctx, uid)
}

// CheckEmailVerification looks up an identity's verified flag by email.
func (s *AdminService) CheckEmailVerification(ctx context.Context, email string) (*identity.Identity, error) {
	return s.accounts.GetIdentityByEmail(ctx, email)
}

// ContactMessage is one contact-form submission.
type ContactMessage struct {
	Email     string
	FirstName string
	LastName  string
	Subject   string
	Message   string
}

// SendContactEmail relays a contact-form submission to the info desk.
func (s *AdminService) SendContactEmail(ctx context.Context, msg ContactMessage) error {
	err := s.notifier.Send(notice.ContactUsNotice, notification.NotificationData{
		To:      s.infoDeskEmail,
		Subject: msg.Subject,
		Data: map[string]string{
			"Email":     msg.Email,
			"FirstName": msg.FirstName,
			"LastName":  msg.LastName,
			"Message":   msg.Message,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}
