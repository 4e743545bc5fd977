package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDenylist(t *testing.T) (*Denylist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewDenylist(client), mr
}

func TestRevokeThenIsRevoked(t *testing.T) {
	denylist, _ := newTestDenylist(t)
	ctx := context.Background()

	require.NoError(t, denylist.Revoke(ctx, "token-a", time.Now().Add(time.Hour)))

	revoked, err := denylist.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = denylist.IsRevoked(ctx, "token-b")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationExpiresWithToken(t *testing.T) {
	denylist, mr := newTestDenylist(t)
	ctx := context.Background()

	require.NoError(t, denylist.Revoke(ctx, "token-a", time.Now().Add(time.Minute)))

	mr.FastForward(2 * time.Minute)

	revoked, err := denylist.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeExpiredTokenIsNoop(t *testing.T) {
	denylist, mr := newTestDenylist(t)
	ctx := context.Background()

	require.NoError(t, denylist.Revoke(ctx, "token-a", time.Now().Add(-time.Minute)))

	assert.Empty(t, mr.Keys())
}

func TestIsRevokedSurfacesRedisErrors(t *testing.T) {
	denylist, mr := newTestDenylist(t)
	mr.Close()

	_, err := denylist.IsRevoked(context.Background(), "token-a")
	assert.Error(t, err)
}
