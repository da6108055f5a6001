package cache_test

import (
	"testing"
	"time"

	"github.com/boddenberg/funds-bfa-go/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "value1" {
		t.Errorf("expected 'value1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	if _, ok := c.Get("nonexistent"); ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_SetWithTTL(t *testing.T) {
	c := cache.New[bool](5 * time.Minute)
	defer c.Close()

	c.SetWithTTL("jti-1", true, 20*time.Millisecond)
	if _, ok := c.Get("jti-1"); !ok {
		t.Fatal("expected entry before expiry")
	}
	time.Sleep(50 * time.Millisecond)
	if _, ok := c.Get("jti-1"); ok {
		t.Fatal("expected entry to expire with its own ttl")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	c.Delete("key1")

	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_DeletePrefix(t *testing.T) {
	c := cache.New[int](5 * time.Minute)
	defer c.Close()

	c.Set("dashboard:manager:a@x.org", 1)
	c.Set("dashboard:admin:b@x.org", 2)
	c.Set("other", 3)

	c.DeletePrefix("dashboard:")

	if _, ok := c.Get("dashboard:manager:a@x.org"); ok {
		t.Error("expected manager entry removed")
	}
	if _, ok := c.Get("dashboard:admin:b@x.org"); ok {
		t.Error("expected admin entry removed")
	}
	if _, ok := c.Get("other"); !ok {
		t.Error("expected unrelated entry kept")
	}
}
