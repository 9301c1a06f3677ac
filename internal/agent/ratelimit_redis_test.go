package agent

import (
	"context"
	"testing"
	"time"
)

func TestRedisRateLimiterRejectsBadURL(t *testing.T) {
	if _, err := NewRedisRateLimiter("not a url", 10, time.Minute, nil); err == nil {
		t.Fatal("expected error for invalid url")
	}
}

func TestRedisRateLimiterKeysByWindow(t *testing.T) {
	rl, err := NewRedisRateLimiter("redis://127.0.0.1:6379/0", 10, time.Minute, nil)
	if err != nil {
		t.Fatalf("NewRedisRateLimiter: %v", err)
	}
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 10, 0, 5, 0, time.UTC)
	rl.now = func() time.Time { return now }
	first := rl.key(7)

	now = now.Add(30 * time.Second)
	if rl.key(7) != first {
		t.Fatal("requests inside one window must share a key")
	}
	if rl.key(8) == first {
		t.Fatal("keys must be per user")
	}
	now = now.Add(time.Minute)
	if rl.key(7) == first {
		t.Fatal("a new window must use a new key")
	}
}

func TestRedisRateLimiterFailsOpen(t *testing.T) {
	// Nothing listens on port 1, so every command fails.
	rl, err := NewRedisRateLimiter("redis://127.0.0.1:1/0", 1, time.Minute, nil)
	if err != nil {
		t.Fatalf("NewRedisRateLimiter: %v", err)
	}
	defer rl.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		if !rl.Allow(ctx, 1) {
			t.Fatal("limiter must allow requests when redis is unreachable")
		}
	}
}

var (
	_ Limiter = (*RateLimiter)(nil)
	_ Limiter = (*RedisRateLimiter)(nil)
)
