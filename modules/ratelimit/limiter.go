// Package ratelimit throttles anonymous form posts (login, sign-up) per client IP
// with a Redis sliding window.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result is the outcome of one rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter decides whether the request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// slidingWindowScript trims the window, counts it and records the request when
// under the limit. Returns {allowed, remaining, retry_after_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local counter_key = KEYS[2]
local now = tonumber(ARGV[1])
local window_start = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local window_ms = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)

if count < limit then
	local seq = redis.call('INCR', counter_key)
	redis.call('ZADD', key, now, now .. ':' .. seq)
	redis.call('PEXPIRE', key, window_ms)
	redis.call('PEXPIRE', counter_key, window_ms)
	return {1, limit - count - 1, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local retry_after = 0
if #oldest >= 2 then
	retry_after = oldest[2] + window_ms - now
end
return {0, 0, retry_after}
`)

// SlidingWindowLimiter keeps request timestamps per key in a Redis sorted set.
type SlidingWindowLimiter struct {
	client   *redis.Client
	prefix   string
	requests int
	window   time.Duration
	now      func() time.Time
}

var _ Limiter = (*SlidingWindowLimiter)(nil)

// NewSlidingWindowLimiter allows requests per window for each key.
func NewSlidingWindowLimiter(client *redis.Client, prefix string, requests int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		client:   client,
		prefix:   prefix,
		requests: requests,
		window:   window,
		now:      time.Now,
	}
}

// Allow records a request for key if the window has room.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	now := l.now()
	redisKey := l.prefix + key

	raw, err := slidingWindowScript.Run(ctx, l.client, []string{redisKey, redisKey + ":seq"},
		now.UnixMilli(),
		now.Add(-l.window).UnixMilli(),
		l.requests,
		l.window.Milliseconds(),
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to run rate limit script: %w", err)
	}
	if len(raw) < 3 {
		return nil, fmt.Errorf("unexpected result length: %d", len(raw))
	}

	vals := make([]int64, 3)
	for i := range vals {
		v, ok := raw[i].(int64)
		if !ok {
			return nil, fmt.Errorf("unexpected type %T at position %d", raw[i], i)
		}
		vals[i] = v
	}

	res := &Result{
		Allowed:   vals[0] == 1,
		Limit:     l.requests,
		Remaining: int(vals[1]),
		ResetAt:   now.Add(l.window),
	}
	if !res.Allowed && vals[2] > 0 {
		res.RetryAfter = time.Duration(vals[2]) * time.Millisecond
	}
	return res, nil
}
