package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const keyPrefix = "storefront:product:"

// RedisProductCache is a read-through cache for product detail lookups.
// Cache failures degrade to a miss.
type RedisProductCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		PoolSize:     20,
		MinIdleConns: 2,
	})
}

func NewRedisProductCache(rdb redis.Cmdable, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{rdb: rdb, ttl: ttl}
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

func (c *RedisProductCache) Get(ctx context.Context, id uuid.UUID) (*models.Product, bool) {
	raw, err := c.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.FromContext(ctx).Warn("product_cache_get_failed", "product_id", id, "error", err)
		}
		return nil, false
	}

	var p models.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		logging.FromContext(ctx).Warn("product_cache_decode_failed", "product_id", id, "error", err)
		return nil, false
	}
	return &p, true
}

func (c *RedisProductCache) Set(ctx context.Context, p *models.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(p.ID), data, c.ttl).Err(); err != nil {
		logging.FromContext(ctx).Warn("product_cache_set_failed", "product_id", p.ID, "error", err)
	}
}

func (c *RedisProductCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if err := c.rdb.Del(ctx, key(id)).Err(); err != nil {
		logging.FromContext(ctx).Warn("product_cache_invalidate_failed", "product_id", id, "error", err)
	}
}
