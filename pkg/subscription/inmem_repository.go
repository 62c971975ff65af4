package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryProfileRepository implements ProfileRepository with process-local
// storage. Intended for tests and local development.
type InMemoryProfileRepository struct {
	mutex    sync.RWMutex
	profiles map[string]*Profile
}

// NewInMemoryProfileRepository creates an empty in-memory profile repository.
func NewInMemoryProfileRepository() *InMemoryProfileRepository {
	return &InMemoryProfileRepository{
		profiles: make(map[string]*Profile),
	}
}

func copyProfile(p *Profile) *Profile {
	cp := *p
	if p.SubscriptionStartDate != nil {
		start := *p.SubscriptionStartDate
		cp.SubscriptionStartDate = &start
	}
	if p.SubscriptionEndDate != nil {
		end := *p.SubscriptionEndDate
		cp.SubscriptionEndDate = &end
	}
	return &cp
}

// CreateProfile creates a new profile with no subscription.
func (r *InMemoryProfileRepository) CreateProfile(ctx context.Context, email string) (*Profile, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now().UTC()
	p := &Profile{
		ID:                 uuid.New(),
		Email:              email,
		SubscriptionStatus: "none",
		CreatedAt:          now,
		LastModifiedAt:     now,
	}
	r.profiles[email] = p
	return copyProfile(p), nil
}

// GetProfileByEmail retrieves a profile by subscriber email.
func (r *InMemoryProfileRepository) GetProfileByEmail(ctx context.Context, email string) (*Profile, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	p, ok := r.profiles[email]
	if !ok {
		return nil, ErrUnknownSubscriber
	}
	return copyProfile(p), nil
}

// UpdateSubscription overwrites the subscription fields of a profile.
func (r *InMemoryProfileRepository) UpdateSubscription(ctx context.Context, email, status string, start, end time.Time, paymentID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	p, ok := r.profiles[email]
	if !ok {
		return ErrUnknownSubscriber
	}

	p.SubscriptionStatus = status
	startCopy, endCopy := start, end
	p.SubscriptionStartDate = &startCopy
	p.SubscriptionEndDate = &endCopy
	p.LastPaymentID = paymentID
	p.LastModifiedAt = time.Now().UTC()
	return nil
}
