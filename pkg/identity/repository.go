package identity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepository is the boundary to the identity store. The gateway only
// reads and mutates identities through these operations and never keeps a
// duplicate copy of an account.
type AccountRepository interface {
	CreateIdentity(ctx context.Context, params CreateIdentityParams) (*Identity, error)
	GetIdentityByUID(ctx context.Context, uid uuid.UUID) (*Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (*Identity, error)
	GetIdentityByPhone(ctx context.Context, phone string) (*Identity, error)
	ListIdentities(ctx context.Context) ([]*Identity, error)
	UpdatePhoneNumber(ctx context.Context, uid uuid.UUID, phone string) error
	UpdatePasswordHash(ctx context.Context, uid uuid.UUID, hash string) error
	SetClaims(ctx context.Context, uid uuid.UUID, claims AuthorizationClaims) error
	SetEmailVerified(ctx context.Context, uid uuid.UUID, verified bool) error
	SetEmailVerifiedByEmail(ctx context.Context, email string, verified bool) error
	DeleteIdentity(ctx context.Context, uid uuid.UUID) error
}

// Repository is the PostgreSQL-backed account repository.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new identity repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const identityColumns = `uid, email, display_name, phone_number, email_verified, password_hash, custom_claims, created_at, last_modified_at`

func scanIdentity(row pgx.Row) (*Identity, error) {
	var (
		id         Identity
		name       sql.NullString
		phone      sql.NullString
		claimsJSON []byte
	)
	err := row.Scan(
		&id.UID,
		&id.Email,
		&name,
		&phone,
		&id.EmailVerified,
		&id.PasswordHash,
		&claimsJSON,
		&id.CreatedAt,
		&id.LastModifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	if name.Valid {
		id.DisplayName = name.String
	}
	if phone.Valid {
		id.PhoneNumber = phone.String
	}
	if len(claimsJSON) > 0 {
		var claims AuthorizationClaims
		if err := json.Unmarshal(claimsJSON, &claims); err != nil {
			return nil, fmt.Errorf("failed to decode custom claims: %w", err)
		}
		id.Claims = &claims
	}

	return &id, nil
}

// CreateIdentity inserts a new identity row.
func (r *Repository) CreateIdentity(ctx context.Context, params CreateIdentityParams) (*Identity, error) {
	query := `
		INSERT INTO users (email, display_name, phone_number, email_verified, password_hash)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5)
		RETURNING ` + identityColumns

	row := r.db.QueryRow(ctx, query,
		params.Email,
		params.DisplayName,
		params.PhoneNumber,
		params.EmailVerified,
		params.PasswordHash,
	)
	id, err := scanIdentity(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_phone_number_key":
				return nil, ErrPhoneNumberTaken
			default:
				return nil, ErrEmailTaken
			}
		}
		return nil, err
	}
	return id, nil
}

// GetIdentityByUID retrieves an identity by uid.
func (r *Repository) GetIdentityByUID(ctx context.Context, uid uuid.UUID) (*Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM users WHERE uid = $1 AND deleted_at IS NULL`
	return scanIdentity(r.db.QueryRow(ctx, query, uid))
}

// GetIdentityByEmail retrieves an identity by email.
func (r *Repository) GetIdentityByEmail(ctx context.Context, email string) (*Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL`
	return scanIdentity(r.db.QueryRow(ctx, query, email))
}

// GetIdentityByPhone retrieves an identity by phone number.
func (r *Repository) GetIdentityByPhone(ctx context.Context, phone string) (*Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM users WHERE phone_number = $1 AND deleted_at IS NULL`
	return scanIdentity(r.db.QueryRow(ctx, query, phone))
}

// ListIdentities returns all identities ordered by creation time.
func (r *Repository) ListIdentities(ctx context.Context) ([]*Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM users WHERE deleted_at IS NULL ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var identities []*Identity
	for rows.Next() {
		id, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		identities = append(identities, id)
	}

	return identities, rows.Err()
}

// UpdatePhoneNumber updates an identity's phone number.
func (r *Repository) UpdatePhoneNumber(ctx context.Context, uid uuid.UUID, phone string) error {
	query := `
		UPDATE users
		SET phone_number = NULLIF($2, ''),
		    last_modified_at = NOW() AT TIME ZONE 'UTC'
		WHERE uid = $1
		AND deleted_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, uid, phone)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrPhoneNumberTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

// UpdatePasswordHash replaces an identity's password hash.
func (r *Repository) UpdatePasswordHash(ctx context.Context, uid uuid.UUID, hash string) error {
	query := `
		UPDATE users
		SET password_hash = $2,
		    last_modified_at = NOW() AT TIME ZONE 'UTC'
		WHERE uid = $1
		AND deleted_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, uid, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

// SetClaims overwrites the custom claims payload wholesale.
func (r *Repository) SetClaims(ctx context.Context, uid uuid.UUID, claims AuthorizationClaims) error {
	payload, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("failed to encode custom claims: %w", err)
	}

	query := `
		UPDATE users
		SET custom_claims = $2,
		    last_modified_at = NOW() AT TIME ZONE 'UTC'
		WHERE uid = $1
		AND deleted_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, uid, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

// SetEmailVerified flips the verified flag without touching claims.
func (r *Repository) SetEmailVerified(ctx context.Context, uid uuid.UUID, verified bool) error {
	query := `
		UPDATE users
		SET email_verified = $2,
		    last_modified_at = NOW() AT TIME ZONE 'UTC'
		WHERE uid = $1
		AND deleted_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, uid, verified)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

// SetEmailVerifiedByEmail flips the verified flag for the identity owning email.
func (r *Repository) SetEmailVerifiedByEmail(ctx context.Context, email string, verified bool) error {
	query := `
		UPDATE users
		SET email_verified = $2,
		    last_modified_at = NOW() AT TIME ZONE 'UTC'
		WHERE email = $1
		AND deleted_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, email, verified)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

// DeleteIdentity soft deletes an identity.
func (r *Repository) DeleteIdentity(ctx context.Context, uid uuid.UUID) error {
	query := `
		UPDATE users
		SET deleted_at = NOW() AT TIME ZONE 'UTC'
		WHERE uid = $1
		AND deleted_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}
