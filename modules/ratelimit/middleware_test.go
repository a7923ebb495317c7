package ratelimit

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/task-tracker/config"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLimiter struct {
	result *Result
	err    error
	keys   []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (*Result, error) {
	f.keys = append(f.keys, key)
	return f.result, f.err
}

func newApp(limiter Limiter) *fiber.App {
	app := fiber.New()
	app.Post("/login/", Handler(limiter), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestHandler_Allows(t *testing.T) {
	limiter := &fakeLimiter{result: &Result{Allowed: true, Limit: 10, Remaining: 9, ResetAt: time.Now().Add(time.Minute)}}
	app := newApp(limiter)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login/", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "10", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", resp.Header.Get("X-RateLimit-Remaining"))
	assert.Len(t, limiter.keys, 1)
}

func TestHandler_Rejects(t *testing.T) {
	limiter := &fakeLimiter{result: &Result{Allowed: false, Limit: 10, RetryAfter: 1500 * time.Millisecond, ResetAt: time.Now()}}
	app := newApp(limiter)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login/", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
}

func TestHandler_FailsOpen(t *testing.T) {
	app := newApp(&fakeLimiter{err: errors.New("connection refused")})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSlidingWindowLimiter(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skip("Redis not available, skipping integration test")
	}
	prefix := "test:ratelimit:"
	t.Cleanup(func() {
		client.Del(ctx, prefix+"10.0.0.1", prefix+"10.0.0.1:seq", prefix+"10.0.0.2", prefix+"10.0.0.2:seq")
		_ = client.Close()
	})

	limiter := NewSlidingWindowLimiter(client, prefix, 3, time.Minute)

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i+1)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Positive(t, res.RetryAfter)

	res, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed, "other keys keep their own window")
}

func TestModule_MiddlewareNilBeforeStart(t *testing.T) {
	m := NewModule(config.RedisConfig{Addr: "localhost:6379"}, config.RateLimitConfig{Requests: 10, Window: time.Minute})
	assert.Nil(t, m.Middleware())
}
