package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scoreboard/scoreboard/internal/model"
)

const (
	// tokenCachePrefix is the Redis key prefix for cached token lookups.
	tokenCachePrefix = "auth:token:"
	// tokenCacheTTL bounds how long a cached lookup is trusted.
	tokenCacheTTL = 5 * time.Minute
)

// CachedToken is the token owner and expiry as stored in the lookup cache.
// Token secrets are never written to the cache.
type CachedToken struct {
	Username string    `json:"u"`
	Expires  time.Time `json:"e"`
}

// GetToken returns a cached token lookup by cache key.
// Returns nil, nil on a cache miss.
func (c *Cache) GetToken(ctx context.Context, cacheKey string) (*CachedToken, error) {
	data, err := c.client.Get(ctx, tokenCachePrefix+cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cached CachedToken
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &cached, nil
}

// SetToken caches a successful token lookup.
func (c *Cache) SetToken(ctx context.Context, cacheKey string, token *model.AccessToken) error {
	data, err := json.Marshal(CachedToken{
		Username: token.Username,
		Expires:  token.Expires,
	})
	if err != nil {
		return fmt.Errorf("marshal cached token: %w", err)
	}

	return c.client.Set(ctx, tokenCachePrefix+cacheKey, data, tokenCacheTTL).Err()
}
