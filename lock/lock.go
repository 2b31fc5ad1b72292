// Package lock serializes work scoped to a string key. Checkout creation uses
// it to narrow the window where two concurrent requests with the same
// idempotency key race; the unique constraint on the idempotency key column
// stays the authoritative guard.
package lock

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

type KeyLocker interface {
	// Acquire blocks until the key lock is held or ctx is done, and returns
	// the release function.
	Acquire(ctx context.Context, key string) (func(), error)
}

const (
	lockExpiry  = 10 * time.Second
	lockRetries = 8
)

// RedisLocker is a redsync-backed distributed lock, safe across multiple
// backend instances.
type RedisLocker struct {
	rs *redsync.Redsync
}

func NewRedisLocker(addr, password string, db int) *RedisLocker {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pool := goredis.NewPool(client)
	return &RedisLocker{rs: redsync.New(pool)}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	mutex := l.rs.NewMutex(
		"lock:"+key,
		redsync.WithExpiry(lockExpiry),
		redsync.WithTries(lockRetries),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, err
	}
	return func() {
		_, _ = mutex.UnlockContext(ctx)
	}, nil
}

// NoopLocker is used when Redis is not configured. Single-instance
// deployments still get correctness from the database unique constraint.
type NoopLocker struct{}

func (NoopLocker) Acquire(ctx context.Context, key string) (func(), error) {
	return func() {}, nil
}
