package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/ekonum/internal/records"
)

const (
	cacheVersionKey = "forecast:version"
	// BumpChannel carries the new version after every invalidation.
	BumpChannel = "forecast.bump"
)

// Cache wraps Redis read-through caching. Keys carry a digest of the records a
// result was computed from plus a global version, so changed records miss and a
// single bump invalidates everything.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if !c.enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON returns the cached value under key or populates it using loader.
func FetchJSON[T any](ctx context.Context, c *Cache, key string, loader func(context.Context) (T, error)) (T, error) {
	var zero T
	if loader == nil {
		return zero, errors.New("forecast: cache loader required")
	}
	if !c.enabled() {
		return loader(ctx)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached T
		if err := json.Unmarshal(payload, &cached); err != nil {
			return zero, err
		}
		return cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		// Redis unavailable: serve uncached.
		return loader(ctx)
	}
	value, err := loader(ctx)
	if err != nil {
		return zero, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return zero, err
	}
	_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	return value, nil
}

// Bump invalidates cached results by incrementing the version and publishing it.
func (c *Cache) Bump(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return 0, err
	}
	if err := c.client.Publish(ctx, BumpChannel, strconv.FormatInt(ver, 10)).Err(); err != nil {
		return 0, err
	}
	return ver, nil
}

// Fingerprint digests every record in snap.
func Fingerprint(snap records.Snapshot) (string, error) {
	h := xxhash.New()
	if err := json.NewEncoder(h).Encode(snap); err != nil {
		return "", fmt.Errorf("forecast: fingerprint records: %w", err)
	}
	return strconv.FormatUint(h.Sum64(), 16), nil
}

func keyProjection(kind string, req ProjectionRequest) string {
	return strings.Join([]string{
		"forecast",
		kind,
		strconv.Itoa(req.StartYear),
		strconv.Itoa(req.Years),
		strconv.FormatFloat(req.InitialCash, 'f', -1, 64),
	}, ":")
}
