package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("a", 1)
	got, ok := c.Get("a")
	if !ok || got != 1 {
		t.Fatalf("expected hit with 1, got %d ok=%v", got, ok)
	}

	c.Set("a", 2)
	got, _ = c.Get("a")
	if got != 2 {
		t.Fatalf("expected overwrite to 2, got %d", got)
	}
	if c.Size() != 1 {
		t.Fatalf("overwrite must not grow the cache, size %d", c.Size())
	}
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	// Touch k0 so k1 becomes the eviction candidate
	c.Get("k0")
	c.Set("k3", 3)

	if c.Size() != 3 {
		t.Fatalf("expected size capped at 3, got %d", c.Size())
	}
	if _, ok := c.Get("k1"); ok {
		t.Fatal("expected least recently used entry evicted")
	}
	if _, ok := c.Get("k0"); !ok {
		t.Fatal("recently used entry must survive")
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache[string](10, 20*time.Millisecond)

	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after expiry")
	}
}

func TestLRUCacheCleanExpired(t *testing.T) {
	c := NewLRUCache[string](10, 20*time.Millisecond)

	c.Set("a", "1")
	c.Set("b", "2")
	time.Sleep(30 * time.Millisecond)
	c.Set("c", "3")

	removed := c.CleanExpired()
	if removed != 2 {
		t.Fatalf("expected 2 expired entries removed, got %d", removed)
	}
	if c.Size() != 1 {
		t.Fatalf("expected 1 live entry, got %d", c.Size())
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	c.Set("k", "v")
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after delete")
	}
	// Deleting a missing key is a no-op
	c.Delete("ghost")
}
