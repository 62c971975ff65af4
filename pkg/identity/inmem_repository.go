package identity

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryAccountRepository implements AccountRepository with process-local
// storage. Intended for tests and local development.
type InMemoryAccountRepository struct {
	mutex      sync.RWMutex
	identities map[uuid.UUID]*Identity
}

// NewInMemoryAccountRepository creates an empty in-memory account repository.
func NewInMemoryAccountRepository() *InMemoryAccountRepository {
	return &InMemoryAccountRepository{
		identities: make(map[uuid.UUID]*Identity),
	}
}

func copyIdentity(id *Identity) *Identity {
	cp := *id
	if id.Claims != nil {
		claims := *id.Claims
		cp.Claims = &claims
	}
	return &cp
}

// CreateIdentity creates a new identity.
func (r *InMemoryAccountRepository) CreateIdentity(ctx context.Context, params CreateIdentityParams) (*Identity, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, existing := range r.identities {
		if existing.Email == params.Email {
			return nil, ErrEmailTaken
		}
		if params.PhoneNumber != "" && existing.PhoneNumber == params.PhoneNumber {
			return nil, ErrPhoneNumberTaken
		}
	}

	now := time.Now().UTC()
	id := &Identity{
		UID:            uuid.New(),
		Email:          params.Email,
		DisplayName:    params.DisplayName,
		PhoneNumber:    params.PhoneNumber,
		EmailVerified:  params.EmailVerified,
		PasswordHash:   params.PasswordHash,
		CreatedAt:      now,
		LastModifiedAt: now,
	}
	r.identities[id.UID] = id

	return copyIdentity(id), nil
}

// GetIdentityByUID retrieves an identity by uid.
func (r *InMemoryAccountRepository) GetIdentityByUID(ctx context.Context, uid uuid.UUID) (*Identity, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	id, ok := r.identities[uid]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	return copyIdentity(id), nil
}

// GetIdentityByEmail retrieves an identity by email.
func (r *InMemoryAccountRepository) GetIdentityByEmail(ctx context.Context, email string) (*Identity, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, id := range r.identities {
		if id.Email == email {
			return copyIdentity(id), nil
		}
	}
	return nil, ErrIdentityNotFound
}

// GetIdentityByPhone retrieves an identity by phone number.
func (r *InMemoryAccountRepository) GetIdentityByPhone(ctx context.Context, phone string) (*Identity, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, id := range r.identities {
		if id.PhoneNumber != "" && id.PhoneNumber == phone {
			return copyIdentity(id), nil
		}
	}
	return nil, ErrIdentityNotFound
}

// ListIdentities returns all identities ordered by creation time.
func (r *InMemoryAccountRepository) ListIdentities(ctx context.Context) ([]*Identity, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	identities := make([]*Identity, 0, len(r.identities))
	for _, id := range r.identities {
		identities = append(identities, copyIdentity(id))
	}
	sort.Slice(identities, func(i, j int) bool {
		return identities[i].CreatedAt.Before(identities[j].CreatedAt)
	})
	return identities, nil
}

// UpdatePhoneNumber updates an identity's phone number.
func (r *InMemoryAccountRepository) UpdatePhoneNumber(ctx context.Context, uid uuid.UUID, phone string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	id, ok := r.identities[uid]
	if !ok {
		return ErrIdentityNotFound
	}
	if phone != "" {
		for _, other := range r.identities {
			if other.UID != uid && other.PhoneNumber == phone {
				return ErrPhoneNumberTaken
			}
		}
	}
	id.PhoneNumber = phone
	id.LastModifiedAt = time.Now().UTC()
	return nil
}

// UpdatePasswordHash replaces an identity's password hash.
func (r *InMemoryAccountRepository) UpdatePasswordHash(ctx context.Context, uid uuid.UUID, hash string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	id, ok := r.identities[uid]
	if !ok {
		return ErrIdentityNotFound
	}
	id.PasswordHash = hash
	id.LastModifiedAt = time.Now().UTC()
	return nil
}

// SetClaims overwrites the custom claims payload wholesale.
func (r *InMemoryAccountRepository) SetClaims(ctx context.Context, uid uuid.UUID, claims AuthorizationClaims) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	id, ok := r.identities[uid]
	if !ok {
		return ErrIdentityNotFound
	}
	claimsCopy := claims
	id.Claims = &claimsCopy
	id.LastModifiedAt = time.Now().UTC()
	return nil
}

// SetEmailVerified flips the verified flag without touching claims.
func (r *InMemoryAccountRepository) SetEmailVerified(ctx context.Context, uid uuid.UUID, verified bool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	id, ok := r.identities[uid]
	if !ok {
		return ErrIdentityNotFound
	}
	id.EmailVerified = verified
	id.LastModifiedAt = time.Now().UTC()
	return nil
}

// SetEmailVerifiedByEmail flips the verified flag for the identity owning email.
func (r *InMemoryAccountRepository) SetEmailVerifiedByEmail(ctx context.Context, email string, verified bool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, id := range r.identities {
		if id.Email == email {
			id.EmailVerified = verified
			id.LastModifiedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrIdentityNotFound
}

// DeleteIdentity removes an identity.
func (r *InMemoryAccountRepository) DeleteIdentity(ctx context.Context, uid uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.identities[uid]; !ok {
		return ErrIdentityNotFound
	}
	delete(r.identities, uid)
	return nil
}
