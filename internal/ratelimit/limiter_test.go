package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return client, mr
}

func TestCheckAllowsWithinLimit(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := New(client)

	result, err := limiter.CheckWithLimits(context.Background(), "client-a", 5, 100)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if !result.Allowed {
		t.Error("first request should be allowed")
	}
	if result.MinuteRemaining != 4 {
		t.Errorf("MinuteRemaining = %d, want 4", result.MinuteRemaining)
	}
}

func TestCheckDeniesOverLimit(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := New(client)

	var last *Result
	for i := 0; i < 4; i++ {
		r, err := limiter.CheckWithLimits(context.Background(), "client-b", 2, 100)
		if err != nil {
			t.Fatalf("Check returned error: %v", err)
		}
		last = r
	}
	if last.Allowed {
		t.Error("expected the request to be denied after exceeding the minute limit")
	}
	if last.RetryAfter <= 0 {
		t.Error("expected a positive RetryAfter when denied")
	}
}

func TestCheckDegradesGracefullyOnRedisError(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := New(client)
	mr.Close() // simulate Redis being unreachable

	result, err := limiter.Check(context.Background(), "client-c")
	if err != nil {
		t.Fatalf("Check should not return an error on Redis failure: %v", err)
	}
	if !result.Allowed {
		t.Error("expected graceful degradation to allow the request when Redis is unreachable")
	}
}
