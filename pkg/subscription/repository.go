package subscription

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Profile is a subscriber's payment profile. It is a separate row from the
// identity record and is only mutated by the reconciler.
type Profile struct {
	ID                    uuid.UUID  `json:"id"`
	Email                 string     `json:"email"`
	SubscriptionStatus    string     `json:"subscriptionStatus"`
	SubscriptionStartDate *time.Time `json:"subscriptionStartDate,omitempty"`
	SubscriptionEndDate   *time.Time `json:"subscriptionEndDate,omitempty"`
	LastPaymentID         string     `json:"lastPaymentId,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	LastModifiedAt        time.Time  `json:"lastModifiedAt"`
}

// ProfileRepository is the boundary to the subscriber profile store.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, email string) (*Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*Profile, error)
	UpdateSubscription(ctx context.Context, email, status string, start, end time.Time, paymentID string) error
}

// Repository is the PostgreSQL-backed profile repository.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new profile repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const profileColumns = `id, email, subscription_status, subscription_start_date, subscription_end_date, last_payment_id, created_at, last_modified_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var (
		p         Profile
		start     sql.NullTime
		end       sql.NullTime
		paymentID sql.NullString
	)
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.SubscriptionStatus,
		&start,
		&end,
		&paymentID,
		&p.CreatedAt,
		&p.LastModifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnknownSubscriber
		}
		return nil, err
	}

	if start.Valid {
		p.SubscriptionStartDate = &start.Time
	}
	if end.Valid {
		p.SubscriptionEndDate = &end.Time
	}
	if paymentID.Valid {
		p.LastPaymentID = paymentID.String
	}

	return &p, nil
}

// CreateProfile inserts a new profile row with no subscription.
func (r *Repository) CreateProfile(ctx context.Context, email string) (*Profile, error) {
	query := `
		INSERT INTO profiles (email)
		VALUES ($1)
		RETURNING ` + profileColumns

	return scanProfile(r.db.QueryRow(ctx, query, email))
}

// GetProfileByEmail retrieves a profile by subscriber email.
func (r *Repository) GetProfileByEmail(ctx context.Context, email string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return scanProfile(r.db.QueryRow(ctx, query, email))
}

// UpdateSubscription overwrites the subscription fields of a profile.
func (r *Repository) UpdateSubscription(ctx context.Context, email, status string, start, end time.Time, paymentID string) error {
	query := `
		UPDATE profiles
		SET subscription_status = $2,
		    subscription_start_date = $3,
		    subscription_end_date = $4,
		    last_payment_id = $5,
		    last_modified_at = NOW() AT TIME ZONE 'UTC'
		WHERE email = $1
	`

	tag, err := r.db.Exec(ctx, query, email, status, start, end, paymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUnknownSubscriber
	}
	return nil
}
