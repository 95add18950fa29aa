package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xeze-org/exercise-tracker/internal/models"
)

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// RedisUserCache caches id -> username lookups. Users never change after
// creation so entries only expire through the TTL.
type RedisUserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisUserCache(rdb *redis.Client, ttl time.Duration) *RedisUserCache {
	return &RedisUserCache{rdb: rdb, ttl: ttl}
}

// Get returns nil, nil on a cache miss.
func (c *RedisUserCache) Get(ctx context.Context, id string) (*models.User, error) {
	name, err := c.rdb.Get(ctx, userKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.User{ID: id, Username: name}, nil
}

func (c *RedisUserCache) Set(ctx context.Context, u models.User) error {
	return c.rdb.Set(ctx, userKey(u.ID), u.Username, c.ttl).Err()
}

func userKey(id string) string {
	return "user:" + id
}
