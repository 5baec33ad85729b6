package nonce

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/siwe-auth/core"
	"github.com/redis/go-redis/v9"
)

// RedisStore shares nonces between instances. Expiry is left to Redis and
// GETDEL gives the atomic single-use consume.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a new Redis nonce store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "siwe:nonce:",
		ttl:    ttl,
	}
}

// Issue stores a fresh nonce for sc, replacing any outstanding one
func (s *RedisStore) Issue(ctx context.Context, sc core.SessionContext) (string, error) {
	if sc == "" {
		return "", ErrEmptyContext
	}

	value, err := Generate()
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, s.prefix+string(sc), value, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", errors.Join(core.ErrStoreOperationFailed, err))
	}

	return value, nil
}

// Consume removes the nonce of sc and reports whether it matched value
func (s *RedisStore) Consume(ctx context.Context, sc core.SessionContext, value string) (bool, error) {
	if sc == "" {
		return false, nil
	}

	stored, err := s.client.GetDel(ctx, s.prefix+string(sc)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to consume nonce: %w", errors.Join(core.ErrStoreOperationFailed, err))
	}

	return equal(stored, value), nil
}
