package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tmoj/authd/core"
	"github.com/tmoj/authd/ports"
)

// RedisStore is a Redis implementation of the revocation store, for
// deployments that keep the blacklist in Redis instead of the storage
// service. Keys expire together with the revocation they carry, so
// Redis garbage-collects dead markers on its own.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed revocation store.
func NewRedisStore(client *redis.Client) ports.RevocationStore {
	return &RedisStore{
		client: client,
		prefix: "authd:revoked:",
	}
}

// Record marks a token identifier as revoked until the revocation's
// expiry. A marker that would already be inert is not written.
func (s *RedisStore) Record(ctx context.Context, revocation *core.Revocation) error {
	ttl := time.Until(revocation.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	key := s.prefix + revocation.TokenID
	value := revocation.ExpiresAt.Format(time.RFC3339Nano)
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("record revocation: %w", core.ErrUpstream)
	}
	return nil
}

// Lookup returns the revocation for a token identifier, or nil once the
// key has lapsed or was never written.
func (s *RedisStore) Lookup(ctx context.Context, tokenID string) (*core.Revocation, error) {
	value, err := s.client.Get(ctx, s.prefix+tokenID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup revocation: %w", core.ErrUpstream)
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, fmt.Errorf("corrupt revocation record for %q: %w", tokenID, core.ErrUpstream)
	}

	return &core.Revocation{TokenID: tokenID, ExpiresAt: expiresAt}, nil
}
