package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const redisKeyPrefix = "zonetune:cache:"

// RedisCache shares cached responses between the api and worker processes.
// Keys are namespaced so a bulk clear never touches foreign data in the
// same database.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		log.Debug().Str("key", key).Msg("No cache entry found")
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	log.Debug().Str("key", key).Msg("Found cached entry")
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	log.Debug().Str("key", key).Msg("Setting cache entry")
	return c.client.Set(ctx, redisKeyPrefix+key, value, 0).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	log.Debug().Str("key", key).Msg("Deleting cache entry")
	return c.client.Del(ctx, redisKeyPrefix+key).Err()
}

func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisCache) Count(ctx context.Context) (int64, error) {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	var count int64
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	return count, nil
}
