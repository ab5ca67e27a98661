package cache

import (
	"testing"
	"time"
)

func newTestLRU(t *testing.T, ttl time.Duration) *LRUCache {
	t.Helper()
	c, err := NewLRU(10, 100, ttl)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestNewLRURejectsBadLimits(t *testing.T) {
	if _, err := NewLRU(0, 100, time.Second); err == nil {
		t.Error("expected error for zero size")
	}
	if _, err := NewLRU(1, -1, time.Second); err == nil {
		t.Error("expected error for negative entries")
	}
}

func TestLRUCache_SetAndGet(t *testing.T) {
	c := newTestLRU(t, time.Minute)
	key := SnapshotKey(3)
	c.Set(key, []byte(`{"nodes":[]}`), 0)

	got, found := c.Get(key)
	if !found {
		t.Fatal("expected to find cached value")
	}
	if string(got) != `{"nodes":[]}` {
		t.Errorf("got %s", got)
	}
}

func TestLRUCache_GetNonExistent(t *testing.T) {
	c := newTestLRU(t, time.Minute)
	if _, found := c.Get("missing"); found {
		t.Error("expected not to find missing key")
	}
}

func TestLRUCache_Expiration(t *testing.T) {
	c := newTestLRU(t, time.Minute)
	c.Set("short", []byte("v"), 50*time.Millisecond)

	if _, found := c.Get("short"); !found {
		t.Fatal("expected value right after set")
	}
	time.Sleep(100 * time.Millisecond)
	if _, found := c.Get("short"); found {
		t.Error("expected value to be expired")
	}
}

func TestLRUCache_DeleteAndClear(t *testing.T) {
	c := newTestLRU(t, time.Minute)
	c.Set("a", []byte("1"), 0)
	c.Set("b", []byte("2"), 0)

	c.Delete("a")
	if _, found := c.Get("a"); found {
		t.Error("expected a to be deleted")
	}
	c.Clear()
	if _, found := c.Get("b"); found {
		t.Error("expected b to be cleared")
	}
}

func TestLRUCache_StatsCountsHits(t *testing.T) {
	c := newTestLRU(t, time.Minute)
	c.Set("k", []byte("value"), 0)
	c.Get("k")
	c.Get("nope")

	stats := c.Stats()
	if stats.Hits < 1 || stats.Misses < 1 {
		t.Errorf("expected at least one hit and one miss, got %+v", stats)
	}
}

func TestSnapshotKey(t *testing.T) {
	if SnapshotKey(0) == SnapshotKey(1) {
		t.Error("different versions must map to different keys")
	}
	if got := SnapshotKey(12); got != "graph:v12" {
		t.Errorf("SnapshotKey(12) = %q", got)
	}
}

func TestMockCache(t *testing.T) {
	m := NewMockCache()
	m.Set("x", []byte("abc"), 0)
	if v, ok := m.Get("x"); !ok || string(v) != "abc" {
		t.Fatalf("Get(x) = %q, %v", v, ok)
	}
	m.Get("y")
	stats := m.Stats()
	if stats.Items != 1 || stats.Size != 3 || stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}
