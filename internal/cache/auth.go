package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// identityCachePrefix is the Redis key prefix for external-id lookups.
	identityCachePrefix = "auth:user:"
	// identityCacheTTL is the time-to-live for cached identities.
	identityCacheTTL = 10 * time.Minute
)

func identityKey(externalID string) string {
	hash := sha256.Sum256([]byte(externalID))
	return identityCachePrefix + hex.EncodeToString(hash[:16])
}

// GetUserID returns the internal user id cached for an auth provider
// subject. Returns ErrCacheMiss if not found.
func (c *Cache) GetUserID(ctx context.Context, externalID string) (int64, error) {
	raw, err := c.client.Get(ctx, identityKey(externalID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("redis get failed: %w", err)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Corrupted entry - treat as miss
		return 0, ErrCacheMiss
	}

	return id, nil
}

// SetUserID caches the internal user id for an auth provider subject.
func (c *Cache) SetUserID(ctx context.Context, externalID string, userID int64) error {
	return c.client.Set(ctx, identityKey(externalID), strconv.FormatInt(userID, 10), identityCacheTTL).Err()
}
