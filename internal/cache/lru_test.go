package cache

import (
	"testing"
	"time"
)

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	now := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", "x")
	c.Set("b", "y")
	now = now.Add(30 * time.Second)
	c.Set("b", "z")
	now = now.Add(45 * time.Second)

	if removed := c.CleanExpired(); removed != 1 {
		t.Errorf("CleanExpired() = %d, want 1", removed)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be expired")
	}
	if v, ok := c.Get("b"); !ok || v != "z" {
		t.Errorf("Get(b) = %q, %v", v, ok)
	}
}

func TestDedup(t *testing.T) {
	d := NewDedup(100, time.Hour)
	if d.Seen("evt-1") {
		t.Fatal("unexpected hit before Mark")
	}
	d.Mark("evt-1")
	if !d.Seen("evt-1") {
		t.Error("expected evt-1 to be seen")
	}

	m := NewManager()
	m.Register(d)
	if n := m.CleanNow(); n != 0 {
		t.Errorf("CleanNow() = %d, want 0", n)
	}
}

func TestDedupLenDropsAfterCleanup(t *testing.T) {
	d := NewDedup(10, 10*time.Millisecond)
	d.Mark("evt-1")
	d.Mark("evt-2")
	d.Mark("evt-1")
	if got := d.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	time.Sleep(20 * time.Millisecond)
	m := NewManager()
	m.Register(d)
	if n := m.CleanNow(); n != 2 {
		t.Errorf("CleanNow() = %d, want 2", n)
	}
	if got := d.Len(); got != 0 {
		t.Errorf("Len() after cleanup = %d, want 0", got)
	}
}
