package cache

import (
	"context"
	"testing"
	"time"
)

func TestTTLCacheExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache(10)
	c.now = func() time.Time { return now }

	if err := c.SetBytes(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if b, ok, _ := c.GetBytes(ctx, "k"); !ok || string(b) != "v" {
		t.Fatalf("got %q %v, want hit", b, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.GetBytes(ctx, "k"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("len = %d, want 0", c.Len())
	}
}

func TestTTLCacheBoundsSize(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache(2)
	_ = c.SetBytes(ctx, "a", []byte("1"), time.Second)
	_ = c.SetBytes(ctx, "b", []byte("2"), time.Hour)
	_ = c.SetBytes(ctx, "c", []byte("3"), time.Hour)

	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	if _, ok, _ := c.GetBytes(ctx, "a"); ok {
		t.Error("entry closest to expiry should have been evicted")
	}
	if _, ok, _ := c.GetBytes(ctx, "c"); !ok {
		t.Error("newest entry missing")
	}
}
