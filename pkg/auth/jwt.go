package auth

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Jwt issues admin session tokens. Handlers verify them with the jwtauth
// middleware configured from the same secret.
type Jwt struct {
	Secret string
	Expiry time.Duration
}

// Option configures a Jwt service.
type Option func(*Jwt)

// WithExpiry sets the session token lifetime.
func WithExpiry(expiry time.Duration) Option {
	return func(j *Jwt) {
		j.Expiry = expiry
	}
}

// NewJwtService creates a Jwt service with the signing secret.
func NewJwtService(secret string, opts ...Option) *Jwt {
	jwtSvc := &Jwt{
		Secret: secret,
		Expiry: 8 * time.Hour,
	}

	for _, opt := range opts {
		opt(jwtSvc)
	}

	return jwtSvc
}

// AdminClaims is the session payload for an authorized admin.
type AdminClaims struct {
	Email       string `json:"email"`
	Permissions string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// CreateAdminToken signs a session token for an authorized admin.
func (j *Jwt) CreateAdminToken(uid uuid.UUID, email, permissions string) (string, error) {
	now := time.Now().UTC()
	claims := AdminClaims{
		Email:       email,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.Expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(j.Secret))
	if err != nil {
		slog.Error("Failed to sign admin session token", "err", err)
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return ss, nil
}
