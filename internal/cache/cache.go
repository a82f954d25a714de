// Package cache keeps a Redis copy of single-user lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"user-directory-service/internal/entity"
)

type RedisUserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisUserCache(rdb *redis.Client, ttl time.Duration) *RedisUserCache {
	return &RedisUserCache{rdb: rdb, ttl: ttl}
}

func userKey(id int) string {
	return fmt.Sprintf("user:%d", id)
}

// Get returns nil, nil on a cache miss.
func (c *RedisUserCache) Get(ctx context.Context, id int) (*entity.User, error) {
	cached, err := c.rdb.Get(ctx, userKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user entity.User
	if err := json.Unmarshal([]byte(cached), &user); err != nil {
		return nil, fmt.Errorf("decode cached user %d: %w", id, err)
	}
	return &user, nil
}

// Set stores id, name and email only; entity.User never marshals the password.
func (c *RedisUserCache) Set(ctx context.Context, user *entity.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, userKey(user.ID), data, c.ttl).Err()
}

func (c *RedisUserCache) Delete(ctx context.Context, id int) error {
	return c.rdb.Del(ctx, userKey(id)).Err()
}
