package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-directory-service/internal/entity"
)

func TestUserKey(t *testing.T) {
	assert.Equal(t, "user:42", userKey(42))
}

func newTestCache(t *testing.T, ttl time.Duration) (*RedisUserCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisUserCache(rdb, ttl), mr
}

func TestRedisUserCache_MissReturnsNil(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	user, err := c.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestRedisUserCache_SetGet(t *testing.T) {
	c, mr := newTestCache(t, 5*time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &entity.User{ID: 1, Name: "Ann", Email: "ann@x.com", Password: "$2a$10$hash"}))

	raw, err := mr.Get("user:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Ann","email":"ann@x.com"}`, raw)
	assert.NotContains(t, raw, "hash")
	assert.Equal(t, 5*time.Minute, mr.TTL("user:1"))

	user, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &entity.User{ID: 1, Name: "Ann", Email: "ann@x.com"}, user)
}

func TestRedisUserCache_Expires(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &entity.User{ID: 1, Name: "Ann", Email: "ann@x.com"}))
	mr.FastForward(time.Minute)

	user, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestRedisUserCache_Delete(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &entity.User{ID: 1, Name: "Ann", Email: "ann@x.com"}))
	require.NoError(t, c.Delete(ctx, 1))
	assert.False(t, mr.Exists("user:1"))

	// deleting an absent key is not an error
	require.NoError(t, c.Delete(ctx, 1))
}

func TestRedisUserCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set("user:1", "not json"))

	user, err := c.Get(context.Background(), 1)
	require.ErrorContains(t, err, "decode cached user 1")
	assert.Nil(t, user)
}

// Nothing listens on port 1, so every command fails fast with a dial error.
func newUnreachableCache(t *testing.T) *RedisUserCache {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisUserCache(rdb, time.Minute)
}

func TestRedisUserCache_UnreachableReturnsErrors(t *testing.T) {
	c := newUnreachableCache(t)
	ctx := context.Background()

	user, err := c.Get(ctx, 1)
	require.Error(t, err)
	assert.Nil(t, user)

	require.Error(t, c.Set(ctx, &entity.User{ID: 1, Name: "Ann", Email: "ann@x.com"}))
	require.Error(t, c.Delete(ctx, 1))
}
