package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trip-map-service/internal/domain"
)

// RedisRouteCache shares computed day routes across service instances.
// Keys are the order-sensitive route cache keys; values are JSON
// encoded DayRoute entries with a TTL so stale provider geometry ages
// out.
type RedisRouteCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisRouteCache{client: client, ttl: ttl, prefix: "route:"}
}

func (c *RedisRouteCache) Get(ctx context.Context, key string) (domain.DayRoute, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.DayRoute{}, false, nil
	}
	if err != nil {
		return domain.DayRoute{}, false, fmt.Errorf("get route cache: %w", err)
	}

	var route domain.DayRoute
	if err := json.Unmarshal(raw, &route); err != nil {
		return domain.DayRoute{}, false, fmt.Errorf("get route cache: decode entry: %w", err)
	}
	return route, true, nil
}

// Put stores a route unless the key already exists. SETNX keeps
// entries immutable under concurrent duplicate inserts.
func (c *RedisRouteCache) Put(ctx context.Context, key string, route domain.DayRoute) error {
	raw, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("insert route cache: encode entry: %w", err)
	}

	if err := c.client.SetNX(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("insert route cache: %w", err)
	}
	return nil
}
