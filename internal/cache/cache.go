// Package cache provides Redis-based caching of elevation lookup results,
// adapted from the teacher's zmanim calculation cache
// (internal/cache/cache.go): same connection setup, same Scan-cursor
// pattern-delete, same TTL/structured-logging conventions, rewired to key
// on rounded coordinates instead of publisher/locality/date.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terrastack/elevation-engine/internal/elevation"
)

// Cache provides Redis-based caching for elevation lookup results.
type Cache struct {
	client   *redis.Client
	redisURL string
}

// LookupTTL is how long a cached elevation result is trusted. Raster
// data backing a lookup never changes at runtime (Non-goals: no write
// path), so this exists purely to bound memory, not for freshness.
const LookupTTL = 24 * time.Hour

// New creates a new Redis cache client, reading REDIS_URL with the same
// localhost fallback the teacher's cache.New uses.
func New() (*Cache, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	isUpstash := strings.Contains(redisURL, "upstash.io")
	provider := "Redis"
	if isUpstash {
		provider = "Upstash Redis"
	}
	slog.Info("cache connection established", "provider", provider, "host", opt.Addr)

	return &Cache{client: client, redisURL: redisURL}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// lookupKey buckets coordinates to ~1m precision (5 decimal places) so
// near-duplicate queries within the same raster cell share a cache
// entry.
func lookupKey(lat, lng float64) string {
	return fmt.Sprintf("elevation:%s:%s",
		strconv.FormatFloat(lat, 'f', 5, 64),
		strconv.FormatFloat(lng, 'f', 5, 64))
}

// GetLookup returns a cached elevation for (lat, lng), or (0, false) on
// a miss.
func (c *Cache) GetLookup(ctx context.Context, lat, lng float64) (elevation.Elevation, bool) {
	key := lookupKey(lat, lng)
	val, err := c.client.Get(ctx, key).Int()
	if err == redis.Nil {
		slog.Debug("cache miss", "key", key)
		return 0, false
	}
	if err != nil {
		slog.Error("cache get error", "key", key, "error", err)
		return 0, false
	}
	slog.Debug("cache hit", "key", key)
	return elevation.Elevation(val), true
}

// SetLookup caches an elevation result for (lat, lng).
func (c *Cache) SetLookup(ctx context.Context, lat, lng float64, elev elevation.Elevation) error {
	key := lookupKey(lat, lng)
	if err := c.client.Set(ctx, key, int(elev), LookupTTL).Err(); err != nil {
		slog.Error("cache set error", "key", key, "error", err)
		return err
	}
	return nil
}

// FlushAll removes every cached lookup, used after the catalog is
// rebuilt with different or updated tiles.
func (c *Cache) FlushAll(ctx context.Context) error {
	return c.deleteByPattern(ctx, "elevation:*")
}

func (c *Cache) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}
		if len(keys) > 0 {
			result, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += result
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	if deleted > 0 {
		slog.Debug("cache keys deleted", "count", deleted, "pattern", pattern)
	}
	return nil
}
