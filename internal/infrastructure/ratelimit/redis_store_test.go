package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/core/internal/infrastructure/logger"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skip("Redis not available, skipping integration test")
	}

	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, "test:ratelimit:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func TestRedisStore_Allow(t *testing.T) {
	client := setupRedis(t)
	store := NewRedisStore(client, Config{
		Limit:     3,
		Window:    time.Minute,
		KeyPrefix: fmt.Sprintf("test:ratelimit:%d:", time.Now().UnixNano()),
		Timeout:   time.Second,
	}, logger.NewNop())

	for i := 0; i < 3; i++ {
		allowed, err := store.Allow("10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i+1)
	}

	allowed, err := store.Allow("10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = store.Allow("10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed, "identifiers have separate budgets")
}

func TestRedisStore_WindowSlides(t *testing.T) {
	client := setupRedis(t)
	store := NewRedisStore(client, Config{
		Limit:     1,
		Window:    time.Second,
		KeyPrefix: fmt.Sprintf("test:ratelimit:%d:", time.Now().UnixNano()),
		Timeout:   time.Second,
	}, logger.NewNop())

	now := time.Now()
	store.now = func() time.Time { return now }

	allowed, _ := store.Allow("client")
	assert.True(t, allowed)
	allowed, _ = store.Allow("client")
	assert.False(t, allowed)

	store.now = func() time.Time { return now.Add(1500 * time.Millisecond) }
	allowed, _ = store.Allow("client")
	assert.True(t, allowed)
}

func TestRedisStore_FailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 50 * time.Millisecond,
	})
	defer client.Close()

	store := NewRedisStore(client, Config{Limit: 1, Window: time.Minute}, logger.NewNop())

	for i := 0; i < 3; i++ {
		allowed, err := store.Allow("client")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}
