// File: limiter.go
// Purpose: Redis-backed fixed-window rate limiter for the elevation lookup façade
// Pattern: service
// Dependencies: Redis, context

package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter provides distributed rate limiting for the demo lookup façade,
// ported from the teacher's internal/services/rate_limiter.go with the
// same Lua-script atomic-increment-with-TTL approach and graceful
// degrade-to-allow behavior on Redis errors.
type Limiter struct {
	redis *redis.Client
}

// Result is the outcome of a rate limit check.
type Result struct {
	Allowed         bool
	MinuteRemaining int
	HourRemaining   int
	MinuteReset     int64
	HourReset       int64
	RetryAfter      int
}

// Default limits for the public lookup endpoint.
const (
	DefaultMinuteLimit = 60
	DefaultHourLimit   = 1000
)

// New creates a Redis-backed limiter.
func New(client *redis.Client) *Limiter {
	return &Limiter{redis: client}
}

// Check applies the default limits for clientID (typically a remote IP
// or API key).
func (l *Limiter) Check(ctx context.Context, clientID string) (*Result, error) {
	return l.CheckWithLimits(ctx, clientID, DefaultMinuteLimit, DefaultHourLimit)
}

// CheckWithLimits applies custom per-client limits.
func (l *Limiter) CheckWithLimits(ctx context.Context, clientID string, minuteLimit, hourLimit int) (*Result, error) {
	minuteKey := fmt.Sprintf("elevation:ratelimit:%s:minute", clientID)
	hourKey := fmt.Sprintf("elevation:ratelimit:%s:hour", clientID)

	now := time.Now()

	minuteCount, minuteTTL, err := l.incrementAndGetTTL(ctx, minuteKey, time.Minute)
	if err != nil {
		slog.Warn("rate limiter: redis error on minute check, allowing request", "client_id", clientID, "error", err)
		return allowAll(now, minuteLimit, hourLimit), nil
	}

	hourCount, hourTTL, err := l.incrementAndGetTTL(ctx, hourKey, time.Hour)
	if err != nil {
		slog.Warn("rate limiter: redis error on hour check, allowing request", "client_id", clientID, "error", err)
		return allowAll(now, minuteLimit, hourLimit), nil
	}

	minuteRemaining := max0(minuteLimit - int(minuteCount))
	hourRemaining := max0(hourLimit - int(hourCount))

	allowed := minuteCount <= int64(minuteLimit) && hourCount <= int64(hourLimit)

	retryAfter := 0
	if !allowed {
		if minuteCount > int64(minuteLimit) {
			retryAfter = int(minuteTTL.Seconds())
		} else {
			retryAfter = int(hourTTL.Seconds())
		}
		slog.Info("rate limit exceeded", "client_id", clientID, "minute_count", minuteCount, "hour_count", hourCount, "retry_after", retryAfter)
	}

	return &Result{
		Allowed:         allowed,
		MinuteRemaining: minuteRemaining,
		HourRemaining:   hourRemaining,
		MinuteReset:     now.Add(minuteTTL).Unix(),
		HourReset:       now.Add(hourTTL).Unix(),
		RetryAfter:      retryAfter,
	}, nil
}

func allowAll(now time.Time, minuteLimit, hourLimit int) *Result {
	return &Result{
		Allowed:         true,
		MinuteRemaining: minuteLimit,
		HourRemaining:   hourLimit,
		MinuteReset:     now.Add(time.Minute).Unix(),
		HourReset:       now.Add(time.Hour).Unix(),
	}
}

func (l *Limiter) incrementAndGetTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	script := redis.NewScript(`
		local count = redis.call('INCR', KEYS[1])
		local ttl = redis.call('TTL', KEYS[1])
		if count == 1 or ttl == -1 then
			redis.call('EXPIRE', KEYS[1], ARGV[1])
			ttl = tonumber(ARGV[1])
		end
		return {count, ttl}
	`)

	result, err := script.Run(ctx, l.redis, []string{key}, int(window.Seconds())).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("run increment script: %w", err)
	}

	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) != 2 {
		return 0, 0, fmt.Errorf("unexpected script result format: %v", result)
	}
	count, ok := resultSlice[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected count type: %v", resultSlice[0])
	}
	ttlSeconds, ok := resultSlice[1].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected ttl type: %v", resultSlice[1])
	}

	return count, time.Duration(ttlSeconds) * time.Second, nil
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
