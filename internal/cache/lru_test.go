package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRUCacheExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := NewLRUCache[int](4, time.Minute).WithClock(clock.Now)

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected hit, got %v %v", v, ok)
	}

	clock.Advance(59 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("entry expired too early")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("entry should have expired")
	}
	if c.Size() != 0 {
		t.Fatalf("expired entry should be removed on read")
	}
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[string](2, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a") // a becomes most recent
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a should still be cached")
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}

	c.Delete("a")
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("expected empty cache after purge")
	}
}

func TestManagerCleanNow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := NewLRUCache[int](10, time.Second).WithClock(clock.Now)
	c.Set("x", 1)
	c.Set("y", 2)

	m := NewManager()
	m.Register(c)
	defer m.Stop()

	if n := m.CleanNow(); n != 0 {
		t.Fatalf("nothing should be expired yet, removed %d", n)
	}
	clock.Advance(2 * time.Second)
	if n := m.CleanNow(); n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager()
	m.Stop()
	m.Stop()

	m = NewManager()
	m.StartCleanup(time.Millisecond)
	m.Stop()
}
