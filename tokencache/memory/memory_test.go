package memory

import (
	"context"
	"testing"
	"time"
)

func TestCache_SetAndGet(t *testing.T) {
	c := New()
	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	item, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item == nil || string(item.Data) != "v" {
		t.Fatalf("unexpected item %+v", item)
	}
	if item.ExpiresAt != nil {
		t.Fatalf("zero ttl should not expire")
	}
}

func TestCache_GetMissing(t *testing.T) {
	item, err := New().Get(context.Background(), "nope")
	if err != nil || item != nil {
		t.Fatalf("expected nil item and nil error, got %+v %v", item, err)
	}
}

func TestCache_TTL(t *testing.T) {
	c := New()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if item, _ := c.Get(ctx, "k"); item == nil {
		t.Fatalf("expected live item")
	}
	now = now.Add(2 * time.Minute)
	if item, _ := c.Get(ctx, "k"); item != nil {
		t.Fatalf("expected expired item to be gone")
	}
	if _, ok := c.items["k"]; ok {
		t.Fatalf("expired item should be evicted on access")
	}
}

func TestCache_Delete(t *testing.T) {
	c := New()
	ctx := context.Background()
	_ = c.Set(ctx, "k", []byte("v"), 0)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if item, _ := c.Get(ctx, "k"); item != nil {
		t.Fatalf("expected deleted item")
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Fatalf("deleting a missing key should succeed: %v", err)
	}
}

func TestCache_SetCopiesData(t *testing.T) {
	c := New()
	ctx := context.Background()
	data := []byte("abc")
	_ = c.Set(ctx, "k", data, 0)
	data[0] = 'x'
	item, _ := c.Get(ctx, "k")
	if string(item.Data) != "abc" {
		t.Fatalf("cache aliases caller data: %s", item.Data)
	}
}
