package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a miniredis instance and returns the store, the server and cleanup function
func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return NewStore(client), mr, cleanup
}

func TestStore_Revoke(t *testing.T) {
	tests := []struct {
		name          string
		jti           string
		ttl           time.Duration
		expectedKey   bool
		expectedError bool
	}{
		{name: "success", jti: "b3c1", ttl: 10 * time.Minute, expectedKey: true},
		{name: "already expired token", jti: "b3c2", ttl: 0, expectedKey: false},
		{name: "negative ttl", jti: "b3c3", ttl: -time.Second, expectedKey: false},
		{name: "empty id", jti: "", ttl: time.Minute, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mr, cleanup := setupTestStore(t)
			defer cleanup()

			err := store.Revoke(context.Background(), tt.jti, tt.ttl)
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.expectedKey, mr.Exists(Key(tt.jti)))
			if tt.expectedKey {
				assert.Equal(t, tt.ttl, mr.TTL(Key(tt.jti)))
			}
		})
	}
}

func TestStore_IsRevoked(t *testing.T) {
	store, mr, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "abc", time.Minute))
	revoked, err = store.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	// entry disappears with its token
	mr.FastForward(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestStore_IsRevoked_RedisDown(t *testing.T) {
	store, mr, cleanup := setupTestStore(t)
	defer cleanup()
	mr.Close()

	_, err := store.IsRevoked(context.Background(), "abc")
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "revoked_token:abc", Key("abc"))
}
