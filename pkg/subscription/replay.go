package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const replayKeyPrefix = "payfast:itn:"

// ReplayGuard remembers gateway payment ids so a redelivered notification is
// acknowledged without being applied twice.
type ReplayGuard interface {
	// MarkSeen records the payment id and reports whether this was the
	// first delivery.
	MarkSeen(ctx context.Context, paymentID string) (bool, error)

	// Forget releases a payment id so a later redelivery counts as first
	// again. Used when reconciliation fails after the id was marked.
	Forget(ctx context.Context, paymentID string) error
}

// RedisReplayGuard backs the replay guard with Redis so the guard holds
// across instances and restarts.
type RedisReplayGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisReplayGuard creates a replay guard on the given Redis client.
func NewRedisReplayGuard(client *redis.Client, ttl time.Duration) *RedisReplayGuard {
	return &RedisReplayGuard{client: client, ttl: ttl}
}

// MarkSeen sets the payment id key if absent. SET NX makes concurrent
// deliveries race safely: exactly one caller sees first == true.
func (g *RedisReplayGuard) MarkSeen(ctx context.Context, paymentID string) (bool, error) {
	return g.client.SetNX(ctx, replayKeyPrefix+paymentID, 1, g.ttl).Result()
}

// Forget deletes the payment id key.
func (g *RedisReplayGuard) Forget(ctx context.Context, paymentID string) error {
	return g.client.Del(ctx, replayKeyPrefix+paymentID).Err()
}

// MemoryReplayGuard is a process-local replay guard for tests and single
// instance deployments without Redis.
type MemoryReplayGuard struct {
	mutex sync.Mutex
	seen  map[string]time.Time
	ttl   time.Duration
}

// NewMemoryReplayGuard creates an empty in-memory replay guard.
func NewMemoryReplayGuard(ttl time.Duration) *MemoryReplayGuard {
	return &MemoryReplayGuard{
		seen: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// MarkSeen records the payment id, expiring stale entries as it goes.
func (g *MemoryReplayGuard) MarkSeen(ctx context.Context, paymentID string) (bool, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	now := time.Now()
	for id, expiry := range g.seen {
		if now.After(expiry) {
			delete(g.seen, id)
		}
	}

	if _, ok := g.seen[paymentID]; ok {
		return false, nil
	}
	g.seen[paymentID] = now.Add(g.ttl)
	return true, nil
}

// Forget releases the payment id.
func (g *MemoryReplayGuard) Forget(ctx context.Context, paymentID string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	delete(g.seen, paymentID)
	return nil
}
