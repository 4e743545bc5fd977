package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistKeyPrefix = "revoked"

// Denylist records revoked token ids in Redis. Each entry carries a TTL equal
// to the remaining token lifetime, so entries disappear once the token would
// have expired anyway.
type Denylist struct {
	redis  *redis.Client
	prefix string
}

// NewDenylist creates a denylist backed by the given Redis client.
func NewDenylist(redisClient *redis.Client) *Denylist {
	return &Denylist{redis: redisClient, prefix: denylistKeyPrefix}
}

func (d *Denylist) key(tokenID string) string {
	return d.prefix + ":" + tokenID
}

// Revoke marks the token id as revoked until expiresAt. Tokens already past
// expiry need no entry.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return d.redis.Set(ctx, d.key(tokenID), "1", ttl).Err()
}

// IsRevoked reports whether the token id has been revoked.
func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.redis.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
