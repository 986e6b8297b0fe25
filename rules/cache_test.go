package rules

import (
	"testing"
	"time"
)

func TestInMemoryProgramCache(t *testing.T) {
	c := newTestCompiler(t)
	prog, err := c.Compile(`Product.Price > 0.0`)
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	cache := NewInMemoryProgramCache(DefaultCacheConfig())
	if _, ok := cache.Get("x"); ok {
		t.Fatal("Expected miss on empty cache")
	}

	cache.Set("x", prog)
	if got, ok := cache.Get("x"); !ok || got == nil {
		t.Fatal("Expected hit after Set")
	}

	cache.Invalidate()
	if _, ok := cache.Get("x"); ok {
		t.Error("Expected miss after Invalidate")
	}
	if cache.Len() != 0 {
		t.Errorf("Expected empty cache, got %d", cache.Len())
	}
}

// TestInMemoryProgramCache_TTL verifies expired entries are treated as misses
func TestInMemoryProgramCache_TTL(t *testing.T) {
	c := newTestCompiler(t)
	prog, err := c.Compile(`Product.Price > 0.0`)
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	now := time.Now()
	cache := NewInMemoryProgramCache(CacheConfig{TTL: time.Minute})
	cache.now = func() time.Time { return now }

	cache.Set("x", prog)
	if _, ok := cache.Get("x"); !ok {
		t.Fatal("Expected hit before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get("x"); ok {
		t.Error("Expected miss after expiry")
	}
}
