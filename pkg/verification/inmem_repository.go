package verification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryTokenRepository implements TokenRepository with process-local
// storage. Intended for tests and local development.
type InMemoryTokenRepository struct {
	mutex  sync.Mutex
	tokens map[uuid.UUID]*Token
}

// NewInMemoryTokenRepository creates an empty in-memory token repository.
func NewInMemoryTokenRepository() *InMemoryTokenRepository {
	return &InMemoryTokenRepository{
		tokens: make(map[uuid.UUID]*Token),
	}
}

// CreateToken persists a new verification token.
func (r *InMemoryTokenRepository) CreateToken(ctx context.Context, email, code string, expiresAt time.Time) (*Token, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	t := &Token{
		ID:        uuid.New(),
		Email:     email,
		Code:      code,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
	r.tokens[t.ID] = t

	tCopy := *t
	return &tCopy, nil
}

// ConsumeToken deletes the token matching both email and code under the
// repository lock, so concurrent redemption attempts see at most one success.
func (r *InMemoryTokenRepository) ConsumeToken(ctx context.Context, email, code string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now().UTC()
	for id, t := range r.tokens {
		if t.Email == email && t.Code == code && t.ExpiresAt.After(now) {
			delete(r.tokens, id)
			return nil
		}
	}
	return ErrTokenNotFound
}

// DeleteTokensByEmail invalidates all outstanding tokens for an email.
func (r *InMemoryTokenRepository) DeleteTokensByEmail(ctx context.Context, email string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for id, t := range r.tokens {
		if t.Email == email {
			delete(r.tokens, id)
		}
	}
	return nil
}

// CleanupExpiredTokens removes expired tokens.
func (r *InMemoryTokenRepository) CleanupExpiredTokens(ctx context.Context) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now().UTC()
	for id, t := range r.tokens {
		if !t.ExpiresAt.After(now) {
			delete(r.tokens, id)
		}
	}
	return nil
}
