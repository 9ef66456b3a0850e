// internal/app/system/ratelimit/ratelimit_test.go
package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	l := New(3, time.Minute)
	key := RequestKey("ws1", "user1")

	for i := 0; i < 3; i++ {
		if !l.Allow(key) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow(key) {
		t.Error("fourth request should be denied")
	}
}

func TestAllowIsolatesKeys(t *testing.T) {
	l := New(1, time.Minute)

	if !l.Allow(RequestKey("ws1", "user1")) {
		t.Error("first key should be allowed")
	}
	if !l.Allow(RequestKey("ws1", "user2")) {
		t.Error("different user should have its own window")
	}
	if !l.Allow(RequestKey("ws2", "user1")) {
		t.Error("different workspace should have its own window")
	}
	if l.Allow(RequestKey("ws1", "user1")) {
		t.Error("repeat on exhausted key should be denied")
	}
}

func TestRemaining(t *testing.T) {
	l := New(5, time.Minute)
	key := RequestKey("ws1", "user1")

	if got := l.Remaining(key); got != 5 {
		t.Errorf("fresh key remaining = %d, want 5", got)
	}
	l.Allow(key)
	l.Allow(key)
	if got := l.Remaining(key); got != 3 {
		t.Errorf("after two events remaining = %d, want 3", got)
	}
}

func TestReset(t *testing.T) {
	l := New(1, time.Minute)
	key := RequestKey("ws1", "user1")

	l.Allow(key)
	if l.Allow(key) {
		t.Fatal("key should be exhausted")
	}
	l.Reset(key)
	if !l.Allow(key) {
		t.Error("reset key should allow again")
	}
}

func TestWindowExpiry(t *testing.T) {
	l := New(1, 20*time.Millisecond)
	key := RequestKey("ws1", "user1")

	l.Allow(key)
	if l.Allow(key) {
		t.Fatal("key should be exhausted inside the window")
	}
	time.Sleep(30 * time.Millisecond)
	if !l.Allow(key) {
		t.Error("expired window should allow again")
	}
}
