package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/redis/go-redis/v9"
)

// CacheClient is the subset of the Redis client used by CachedProvider.
type CacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// CachedProvider decorates a Provider with a shared Redis cache.
// Keys are coordinates rounded to four decimals (roughly 11 m), so a user
// nudging the map back and forth does not hit the provider every time.
// Failed lookups are never cached.
type CachedProvider struct {
	next  Provider
	cache CacheClient
	ttl   time.Duration
	log   *slog.Logger
}

// NewCachedProvider wraps next with a cache whose entries live for ttl.
func NewCachedProvider(next Provider, cache CacheClient, ttl time.Duration, log *slog.Logger) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, ttl: ttl, log: log}
}

// CacheKey returns the cache key used for coords.
func CacheKey(coords models.Coordinates) string {
	return fmt.Sprintf("revgeo:%.4f:%.4f", coords.Latitude, coords.Longitude)
}

// Reverse returns the cached place for coords or asks the wrapped provider.
// Cache errors are logged and otherwise ignored.
func (cp *CachedProvider) Reverse(ctx context.Context, coords models.Coordinates) (*models.Place, error) {
	key := CacheKey(coords)

	raw, err := cp.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var place models.Place
		if err = json.Unmarshal(raw, &place); err == nil {
			cp.log.DebugContext(ctx, "Reverse geocode cache hit", "key", key)
			return &place, nil
		}
		cp.log.WarnContext(ctx, "Dropping undecodable cache entry", "key", key, "error", err)
	case !errors.Is(err, redis.Nil):
		cp.log.WarnContext(ctx, "Reverse geocode cache unavailable", "key", key, "error", err)
	}

	place, err := cp.next.Reverse(ctx, coords)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(place)
	if err != nil {
		return place, nil
	}
	if err = cp.cache.Set(ctx, key, payload, cp.ttl).Err(); err != nil {
		cp.log.WarnContext(ctx, "Failed to store reverse geocode result", "key", key, "error", err)
	}

	return place, nil
}
