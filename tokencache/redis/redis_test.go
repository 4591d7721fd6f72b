package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisCache(t *testing.T) {
	// Skip test if Redis is not available
	client := redis.NewClient(&redis.Options{
		Addr: "127.0.0.1:6379",
		DB:   3, // Use separate DB for token cache tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	// Clean up test data
	defer client.FlushDB(ctx)

	c, err := New(Config{Client: client, KeyPrefix: "test:tokens:"})
	if err != nil {
		t.Fatalf("Failed to create Redis cache: %v", err)
	}
	defer c.Close()

	t.Run("SetAndGet", func(t *testing.T) {
		if err := c.Set(ctx, "k1", []byte("tok"), time.Minute); err != nil {
			t.Fatalf("set: %v", err)
		}
		item, err := c.Get(ctx, "k1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if item == nil || string(item.Data) != "tok" {
			t.Fatalf("unexpected item %+v", item)
		}
		if item.ExpiresAt == nil {
			t.Fatalf("expected expiry to be recorded")
		}
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		item, err := c.Get(ctx, "missing")
		if err != nil || item != nil {
			t.Fatalf("expected nil, nil; got %+v, %v", item, err)
		}
	})

	t.Run("TTL", func(t *testing.T) {
		if err := c.Set(ctx, "short", []byte("x"), 100*time.Millisecond); err != nil {
			t.Fatalf("set: %v", err)
		}
		time.Sleep(250 * time.Millisecond)
		item, err := c.Get(ctx, "short")
		if err != nil || item != nil {
			t.Fatalf("expected expired item to be gone, got %+v, %v", item, err)
		}
	})

	t.Run("DeleteKey", func(t *testing.T) {
		_ = c.Set(ctx, "del", []byte("x"), 0)
		if err := c.Delete(ctx, "del"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if item, _ := c.Get(ctx, "del"); item != nil {
			t.Fatalf("expected deleted item")
		}
	})

	t.Run("KeyPrefix", func(t *testing.T) {
		_ = c.Set(ctx, "pfx", []byte("x"), 0)
		n, err := client.Exists(ctx, "test:tokens:pfx").Result()
		if err != nil || n != 1 {
			t.Fatalf("expected prefixed key to exist, got %d %v", n, err)
		}
	})
}

func TestNew_RequiresClient(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error without client")
	}
}
