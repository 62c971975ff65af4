package verification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Token is one outstanding, single-use proof of email ownership.
type Token struct {
	ID        uuid.UUID
	Email     string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// TokenRepository is the durable store for verification tokens.
//
// ConsumeToken must be atomic per (email, code): when two redemption attempts
// race, at most one may succeed. Implementations use store-level conditional
// deletes rather than process-local locks so multiple gateway instances stay
// correct.
type TokenRepository interface {
	CreateToken(ctx context.Context, email, code string, expiresAt time.Time) (*Token, error)
	ConsumeToken(ctx context.Context, email, code string) error
	DeleteTokensByEmail(ctx context.Context, email string) error
	CleanupExpiredTokens(ctx context.Context) error
}

// Repository is the PostgreSQL-backed token repository.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new token repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateToken persists a new verification token.
func (r *Repository) CreateToken(ctx context.Context, email, code string, expiresAt time.Time) (*Token, error) {
	query := `
		INSERT INTO verification_tokens (email, code, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, email, code, created_at, expires_at
	`

	var t Token
	err := r.db.QueryRow(ctx, query, email, code, expiresAt).Scan(
		&t.ID,
		&t.Email,
		&t.Code,
		&t.CreatedAt,
		&t.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// ConsumeToken deletes the token matching both email and code in one
// conditional statement. Zero rows deleted means the pair never existed, was
// already redeemed, or has expired.
func (r *Repository) ConsumeToken(ctx context.Context, email, code string) error {
	query := `
		DELETE FROM verification_tokens
		WHERE email = $1
		AND code = $2
		AND expires_at > NOW() AT TIME ZONE 'UTC'
	`

	tag, err := r.db.Exec(ctx, query, email, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTokenNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// DeleteTokensByEmail invalidates all outstanding tokens for an email.
func (r *Repository) DeleteTokensByEmail(ctx context.Context, email string) error {
	query := `DELETE FROM verification_tokens WHERE email = $1`

	_, err := r.db.Exec(ctx, query, email)
	return err
}

// CleanupExpiredTokens removes expired tokens.
func (r *Repository) CleanupExpiredTokens(ctx context.Context) error {
	query := `DELETE FROM verification_tokens WHERE expires_at <= NOW() AT TIME ZONE 'UTC'`

	_, err := r.db.Exec(ctx, query)
	return err
}
