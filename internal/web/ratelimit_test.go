package web

import (
	"testing"
	"time"
)

func TestRateLimiter_PerIPBucket(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.allow("10.0.0.1") || !rl.allow("10.0.0.1") {
		t.Fatal("first two requests should pass")
	}
	if rl.allow("10.0.0.1") {
		t.Error("third request within the window should be rejected")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("another IP has its own bucket")
	}

	now = now.Add(30 * time.Second)
	if !rl.allow("10.0.0.1") {
		t.Error("one token should be refilled after half a window")
	}
	if rl.allow("10.0.0.1") {
		t.Error("only one token should be refilled")
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(5, time.Minute)
	rl.now = func() time.Time { return now }

	rl.allow("10.0.0.1")
	now = now.Add(30 * time.Second)
	rl.allow("10.0.0.2")

	now = now.Add(45 * time.Second)
	rl.sweep()

	if _, ok := rl.visitors["10.0.0.1"]; ok {
		t.Error("idle visitor should be forgotten")
	}
	if _, ok := rl.visitors["10.0.0.2"]; !ok {
		t.Error("recent visitor should be kept")
	}
}
