// Package revocation keeps a Redis deny-list of token IDs that were logged out before they expired.
package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "revoked_token:"

// Store is a Redis-backed deny-list keyed by token ID (jti)
type Store struct {
	client *redis.Client
}

// NewStore creates a new revocation store on top of an existing Redis client
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Key returns the Redis key used for the token ID
func Key(jti string) string {
	return keyPrefix + jti
}

// Revoke marks the token ID as revoked for ttl.
// Entries expire together with the token they deny, so a non-positive ttl is a no-op.
func (s *Store) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return fmt.Errorf("token id is required")
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.client.Set(ctx, Key(jti), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token ID is on the deny-list
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, Key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}
