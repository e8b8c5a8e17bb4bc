package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Close()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "microphone egile"); ok {
		t.Error("hit on empty cache")
	}

	c.Set(ctx, "microphone egile", "prod_000001")
	id, ok := c.Get(ctx, "microphone egile")
	if !ok || id != "prod_000001" {
		t.Errorf("Get = (%q, %v), want prod_000001", id, ok)
	}

	// Overwrites take effect.
	c.Set(ctx, "microphone egile", "prod_000002")
	if id, _ := c.Get(ctx, "microphone egile"); id != "prod_000002" {
		t.Errorf("after overwrite: %q", id)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemory(10 * time.Millisecond)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "test laptop", "prod_000002")
	if _, ok := c.Get(ctx, "test laptop"); !ok {
		t.Fatal("miss before expiry")
	}

	time.Sleep(20 * time.Millisecond)
	if id, ok := c.Get(ctx, "test laptop"); ok {
		t.Errorf("expired entry still served: %q", id)
	}
}

func TestMemoryCacheBounded(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Close()
	ctx := context.Background()

	for i := 0; i < memoryMaxEntries+100; i++ {
		c.Set(ctx, fmt.Sprintf("mention-%d", i), "prod_000001")
	}
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	if n > memoryMaxEntries {
		t.Errorf("cache grew to %d entries, cap is %d", n, memoryMaxEntries)
	}
}

func TestRedisCache(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()

	c, err := NewRedis(ctx, srv.Addr(), "", 0, time.Minute)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer c.Close()

	if _, ok := c.Get(ctx, "microphone egile"); ok {
		t.Error("hit on empty cache")
	}

	c.Set(ctx, "microphone egile", "prod_000001")
	id, ok := c.Get(ctx, "microphone egile")
	if !ok || id != "prod_000001" {
		t.Errorf("Get = (%q, %v), want prod_000001", id, ok)
	}

	// Keys carry the shared prefix so deployments can share a database.
	if !srv.Exists(redisKeyPrefix + "microphone egile") {
		t.Error("key stored without prefix")
	}

	// TTL expiry.
	srv.FastForward(2 * time.Minute)
	if id, ok := c.Get(ctx, "microphone egile"); ok {
		t.Errorf("expired entry still served: %q", id)
	}
}

func TestRedisCacheConnectFailure(t *testing.T) {
	if _, err := NewRedis(context.Background(), "127.0.0.1:1", "", 0, time.Minute); err == nil {
		t.Error("expected connection error")
	}
}
