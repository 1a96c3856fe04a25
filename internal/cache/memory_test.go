package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || val != "v" {
		t.Fatalf("get = %q hit=%v err=%v", val, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Fatal("key survived delete")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	current := time.Now()
	c.now = func() time.Time { return current }

	if err := c.Set(ctx, "k", "v", 30*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	current = current.Add(29 * time.Second)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("entry expired early")
	}

	current = current.Add(2 * time.Second)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Fatal("entry outlived its TTL")
	}
}

func TestMemoryCacheMissingKey(t *testing.T) {
	c := NewMemoryCache()
	if _, hit, err := c.Get(context.Background(), "absent"); hit || err != nil {
		t.Fatalf("hit=%v err=%v, want miss", hit, err)
	}
}
