package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockLost is returned when a redis lock expired before it was released.
var ErrLockLost = errors.New("roster: lock expired before release")

const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisClient is the subset of *redis.Client the locker uses.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisLocker is a Locker shared across processes through redis SET NX keys.
type RedisLocker struct {
	client       RedisClient
	prefix       string
	ttl          time.Duration
	retryBackoff time.Duration
	onLost       func(key string, err error)
}

// RedisLockerOption configures a RedisLocker.
type RedisLockerOption func(*RedisLocker)

// WithLockTTL bounds how long a crashed holder can block a roster.
func WithLockTTL(ttl time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithRetryBackoff sets the polling interval while waiting for a held key.
func WithRetryBackoff(backoff time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		if backoff > 0 {
			l.retryBackoff = backoff
		}
	}
}

// WithLockLostHook is invoked when release fails or finds the key no longer owned.
func WithLockLostHook(hook func(key string, err error)) RedisLockerOption {
	return func(l *RedisLocker) {
		l.onLost = hook
	}
}

// NewRedisLocker constructs a RedisLocker. Keys are stored as prefix+key.
func NewRedisLocker(client RedisClient, prefix string, opts ...RedisLockerOption) *RedisLocker {
	locker := &RedisLocker{
		client:       client,
		prefix:       prefix,
		ttl:          10 * time.Second,
		retryBackoff: 25 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(locker)
	}
	return locker
}

// Lock polls SET NX until the key is acquired or ctx ends.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.NewString()

	for {
		acquired, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", redisKey, err)
		}
		if acquired {
			break
		}

		timer := time.NewTimer(l.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true

		// The caller's context may already be done; release must still reach redis.
		releaseCtx, cancel := context.WithTimeout(context.Background(), l.ttl)
		defer cancel()
		deleted, err := l.client.Eval(releaseCtx, releaseScript, []string{redisKey}, token).Int64()
		if err == nil && deleted == 0 {
			err = ErrLockLost
		}
		if err != nil && l.onLost != nil {
			l.onLost(redisKey, err)
		}
	}, nil
}
