package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lock acquisition parameters. The TTL guards against a crashed holder
// wedging a lease forever; WithLock work must finish well inside it.
const (
	lockTTL           = 30 * time.Second
	lockRetryInterval = 50 * time.Millisecond
	lockAcquireBudget = 5 * time.Second
)

// RedisLeaseLocker serializes per-lease mutations across instances using a
// Redis SETNX lock keyed by lease id.
type RedisLeaseLocker struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisLeaseLocker creates a Redis-backed lease locker
func NewRedisLeaseLocker(client *redis.Client) *RedisLeaseLocker {
	return &RedisLeaseLocker{
		client:    client,
		keyPrefix: "lease:lock:",
	}
}

// WithLock runs fn while holding the lock for leaseID. Acquisition polls
// until the budget elapses, then fails with a conflict so the caller can
// retry.
func (l *RedisLeaseLocker) WithLock(ctx context.Context, leaseID uuid.UUID, fn func(ctx context.Context) error) error {
	key := l.keyPrefix + leaseID.String()
	token := uuid.NewString()

	deadline := time.Now().Add(lockAcquireBudget)
	for {
		ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire lease lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return shared.NewConflictError("Lease is locked by another operation").
				WithDetail("lease_id", leaseID.String())
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	defer func() {
		// Release only if we still own the lock
		releaseScript := redis.NewScript(`
			if redis.call("GET", KEYS[1]) == ARGV[1] then
				return redis.call("DEL", KEYS[1])
			end
			return 0
		`)
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}()

	return fn(ctx)
}

// InMemoryLeaseLocker serializes per-lease mutations within a single
// process. Suitable for tests and single-instance deployments.
type InMemoryLeaseLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewInMemoryLeaseLocker creates an in-process lease locker
func NewInMemoryLeaseLocker() *InMemoryLeaseLocker {
	return &InMemoryLeaseLocker{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// WithLock runs fn while holding the in-process lock for leaseID
func (l *InMemoryLeaseLocker) WithLock(ctx context.Context, leaseID uuid.UUID, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	lock, ok := l.locks[leaseID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[leaseID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
