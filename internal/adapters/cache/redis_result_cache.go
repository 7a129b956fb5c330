package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
)

const resultKeyPrefix = "cadence:"

// RedisResultCache stores analytics summaries in redis with a fixed TTL.
// Cache failures are logged and degrade to recomputation, never to errors.
type RedisResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisResultCache(rdb *redis.Client, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{rdb: rdb, ttl: ttl}
}

func (c *RedisResultCache) Get(ctx context.Context, key string) (*domain.AnalyticsSummary, bool) {
	val, err := c.rdb.Get(ctx, resultKeyPrefix+key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[CACHE] Redis read error: %v", err)
		}
		return nil, false
	}

	var summary domain.AnalyticsSummary
	if err := json.Unmarshal([]byte(val), &summary); err != nil {
		log.Printf("[CACHE] Corrupted analytics entry %s, cleaning up key", key)
		c.rdb.Del(ctx, resultKeyPrefix+key)
		return nil, false
	}
	return &summary, true
}

func (c *RedisResultCache) Set(ctx context.Context, key string, summary *domain.AnalyticsSummary) {
	data, err := json.Marshal(summary)
	if err != nil {
		log.Printf("[CACHE] Failed to marshal analytics entry: %v", err)
		return
	}
	if err := c.rdb.Set(ctx, resultKeyPrefix+key, data, c.ttl).Err(); err != nil {
		log.Printf("[CACHE] Redis set error: %v", err)
	}
}

func (c *RedisResultCache) Clear(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, resultKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
