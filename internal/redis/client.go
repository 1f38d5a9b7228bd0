package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const lockKeyPrefix = "lock:"

// retryInterval is how long Lock waits between SET NX attempts.
var retryInterval = 25 * time.Millisecond

// ErrLockTimeout is returned when the lock stays held by someone else for longer than the lock TTL.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// releaseScript deletes the key only if it still holds our token, so an
// expired lock taken over by another instance is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// Initialize connects to Redis. ttl bounds both how long a lock is held and how long Lock waits for it.
func Initialize(redisURL string, ttl time.Duration) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewClient(rdb, ttl), nil
}

func NewClient(rdb *redis.Client, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Client{rdb: rdb, ttl: ttl}
}

// LockKey is the Redis key guarding name.
func LockKey(name string) string {
	return lockKeyPrefix + name
}

// Lock takes a distributed lock on name, waiting up to the lock TTL for a
// current holder to release it.
func (c *Client) Lock(ctx context.Context, name string) (func(), error) {
	key := LockKey(name)
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, c.ttl)
	defer cancel()

	for {
		ok, err := c.rdb.SetNX(ctx, key, token, c.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-time.After(retryInterval):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		released, err := releaseScript.Run(releaseCtx, c.rdb, []string{key}, token).Int()
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to release lock")
			return
		}
		if released == 0 {
			log.Warn().Str("key", key).Msg("lock expired before release")
		}
	}, nil
}

// Ping reports whether Redis answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
