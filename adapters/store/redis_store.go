package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/siwe-auth/core"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the Store interface
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "siwe:revoked:",
	}
}

// Revoke marks a session as revoked in Redis until ttl elapses
func (s *RedisStore) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := s.client.Set(ctx, s.prefix+sessionID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", errors.Join(core.ErrStoreOperationFailed, err))
	}

	return nil
}

// IsRevoked checks if a session is revoked in Redis
func (s *RedisStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation: %w", errors.Join(core.ErrStoreOperationFailed, err))
	}

	return n > 0, nil
}
