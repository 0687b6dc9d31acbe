package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestFixedWindowLimiter(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", 2, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	t.Cleanup(func() { limiter.Close() })
	ctx := context.Background()

	for i := range 2 {
		ok, err := limiter.Allow(ctx, "10.0.0.1")
		if err != nil || !ok {
			t.Fatalf("request %d should pass, got %v %v", i+1, ok, err)
		}
	}
	if ok, _ := limiter.Allow(ctx, "10.0.0.1"); ok {
		t.Fatal("third request should be blocked")
	}
	if ok, _ := limiter.Allow(ctx, "10.0.0.2"); !ok {
		t.Fatal("other clients keep their own quota")
	}
}

func TestFixedWindowLimiterReportsRedisErrors(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewFixedWindowLimiter(redis.Addr(), "", "", 1, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	redis.Close()
	if _, err := limiter.Allow(context.Background(), "10.0.0.1"); err == nil {
		t.Fatal("expected an error once redis is gone")
	}
}

func TestNewFixedWindowLimiterValidates(t *testing.T) {
	if _, err := NewFixedWindowLimiter("", "", "", 1, time.Second); err == nil {
		t.Error("expected error for empty addr")
	}
	if _, err := NewFixedWindowLimiter("127.0.0.1:6379", "", "", 0, time.Second); err == nil {
		t.Error("expected error for zero limit")
	}
}
