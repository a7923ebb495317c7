package ratelimit

import (
	"context"
	"fmt"
	"log"

	"github.com/example/task-tracker/config"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces limiter keys in Redis.
const KeyPrefix = "ratelimit:form:"

// RateLimitModule owns the Redis connection backing the form throttle.
type RateLimitModule struct {
	redisCfg config.RedisConfig
	cfg      config.RateLimitConfig
	client   *redis.Client
	limiter  *SlidingWindowLimiter
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*RateLimitModule)(nil)
	_ mono.HealthCheckableModule = (*RateLimitModule)(nil)
)

// NewModule creates a new rate limit module.
func NewModule(redisCfg config.RedisConfig, cfg config.RateLimitConfig) *RateLimitModule {
	return &RateLimitModule{redisCfg: redisCfg, cfg: cfg}
}

// Name returns the module name.
func (m *RateLimitModule) Name() string {
	return "ratelimit"
}

// Start connects to Redis.
func (m *RateLimitModule) Start(ctx context.Context) error {
	m.client = redis.NewClient(&redis.Options{
		Addr:     m.redisCfg.Addr,
		Password: m.redisCfg.Password,
		DB:       m.redisCfg.DB,
	})
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.limiter = NewSlidingWindowLimiter(m.client, KeyPrefix, m.cfg.Requests, m.cfg.Window)
	log.Printf("[ratelimit] Connected to Redis at %s (%d requests per %s)", m.redisCfg.Addr, m.cfg.Requests, m.cfg.Window)
	return nil
}

// Stop closes the Redis connection.
func (m *RateLimitModule) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			log.Printf("[ratelimit] Error closing Redis connection: %v", err)
		}
	}
	log.Println("[ratelimit] Module stopped")
	return nil
}

// Middleware returns the per-IP throttle, or nil before Start.
func (m *RateLimitModule) Middleware() fiber.Handler {
	if m.limiter == nil {
		return nil
	}
	return Handler(m.limiter)
}

// Health pings Redis.
func (m *RateLimitModule) Health(ctx context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{Healthy: false, Message: "not started"}
	}
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"requests": m.cfg.Requests,
			"window":   m.cfg.Window.String(),
		},
	}
}
