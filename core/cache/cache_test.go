package cache

import (
	"testing"
	"time"
)

func TestNewFragments(t *testing.T) {
	f := NewFragments(nil)
	if f == nil {
		t.Fatal("NewFragments returned nil")
	}
}

func TestGetInstance(t *testing.T) {
	inst := GetInstance()
	if inst == nil {
		t.Fatal("GetInstance returned nil")
	}
	if GetInstance() != inst {
		t.Error("GetInstance should return same instance")
	}
}

func TestSet_Get(t *testing.T) {
	f := NewFragments(nil)
	f.Set("cart-drawer", "<div>drawer</div>", 0)
	got, ok := f.Get("cart-drawer")
	if !ok {
		t.Fatal("Get: want true")
	}
	if got != "<div>drawer</div>" {
		t.Errorf("Get = %q, want drawer markup", got)
	}
}

func TestGet_Missing(t *testing.T) {
	f := NewFragments(nil)
	if _, ok := f.Get("nonexistent-section"); ok {
		t.Error("Get missing key: want false")
	}
}

func TestSet_TTLExpires(t *testing.T) {
	f := NewFragments(nil)
	f.Set("short", "<p>x</p>", 1)
	if _, ok := f.Get("short"); !ok {
		t.Fatal("entry should be live before TTL")
	}
	// Force expiry by rewriting with an already-past deadline.
	f.m.Store("short", fragmentItem{HTML: "<p>x</p>", ExpiresAt: time.Now().Add(-time.Second).UnixNano()})
	if _, ok := f.Get("short"); ok {
		t.Error("expired entry should be gone")
	}
}

func TestInvalidate(t *testing.T) {
	f := NewFragments(nil)
	f.Set("cart-drawer", "a", 0)
	f.Set("cart-icon-bubble", "b", 0)
	f.Invalidate("cart-drawer")
	if _, ok := f.Get("cart-drawer"); ok {
		t.Error("cart-drawer should be gone")
	}
	if _, ok := f.Get("cart-icon-bubble"); !ok {
		t.Error("cart-icon-bubble should survive")
	}
}

func TestInvalidateAll(t *testing.T) {
	f := NewFragments(nil)
	f.Set("s1", "a", 0)
	f.Set("s2", "b", 0)
	f.InvalidateAll()
	if _, ok := f.Get("s1"); ok {
		t.Error("s1 should be gone")
	}
	if _, ok := f.Get("s2"); ok {
		t.Error("s2 should be gone")
	}
}

func TestKeys(t *testing.T) {
	f := NewFragments(nil)
	f.Set("k1", "a", 0)
	f.Set("k2", "b", 0)
	keys := f.Keys()
	if len(keys) != 2 {
		t.Errorf("Keys = %d entries, want 2", len(keys))
	}
}
