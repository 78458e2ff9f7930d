// Package lock keeps two loaders from writing to the same database at the
// same time. The lock lives in Redis; without Redis every lock is granted.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/order-import/pkg/logger"
	"github.com/nimasrn/order-import/pkg/redis"
)

var (
	ErrLocked        = errors.New("another run holds the lock")
	ErrAcquireFailed = errors.New("failed to acquire run lock")
	ErrNotHeld       = errors.New("run lock is no longer held")
)

const DefaultKey = "order-import:run"

type Locker interface {
	Acquire(ctx context.Context) (*Lease, error)
}

type Lease struct {
	key     string
	token   string
	release func(ctx context.Context) error
}

func (l *Lease) Token() string { return l.token }

func (l *Lease) Release(ctx context.Context) error {
	if l == nil || l.release == nil {
		return nil
	}
	return l.release(ctx)
}

type RedisLocker struct {
	redis redis.RedisAdapter
	key   string
	ttl   time.Duration
}

func NewRedisLocker(adapter redis.RedisAdapter, key string, ttl time.Duration) *RedisLocker {
	if key == "" {
		key = DefaultKey
	}
	return &RedisLocker{redis: adapter, key: key, ttl: ttl}
}

func (r *RedisLocker) Acquire(ctx context.Context) (*Lease, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	token := uuid.NewString()
	acquired, err := r.redis.SetNX(r.key, []byte(token), r.ttl)
	if err != nil {
		logger.Error("failed to acquire run lock", "key", r.key, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAcquireFailed, err)
	}
	if !acquired {
		holder, _ := r.redis.Get(r.key)
		logger.Warn("run lock already held", "key", r.key, "holder", string(holder))
		return nil, ErrLocked
	}

	logger.Info("run lock acquired", "key", r.key, "ttl", r.ttl)

	return &Lease{
		key:   r.key,
		token: token,
		release: func(ctx context.Context) error {
			deleted, err := r.redis.DelIfEquals(r.key, []byte(token))
			if err != nil {
				return fmt.Errorf("release run lock: %w", err)
			}
			if !deleted {
				return ErrNotHeld
			}
			logger.Info("run lock released", "key", r.key)
			return nil
		},
	}, nil
}

// Noop grants every lock. Used when no Redis is configured.
type Noop struct{}

func (Noop) Acquire(ctx context.Context) (*Lease, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Lease{}, nil
}
