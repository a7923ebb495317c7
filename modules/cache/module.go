package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/redis/go-redis/v9"
)

// DirectoryKey holds the home page user directory.
const DirectoryKey = "directory"

// CacheModule owns the Redis connection used for the home page cache and drops the
// cached directory whenever a task or user changes.
type CacheModule struct {
	redisCfg config.RedisConfig
	cfg      config.CacheConfig
	client   *redis.Client
	cache    *Cache
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*CacheModule)(nil)
	_ mono.EventConsumerModule   = (*CacheModule)(nil)
	_ mono.HealthCheckableModule = (*CacheModule)(nil)
)

// NewModule creates a new cache module.
func NewModule(redisCfg config.RedisConfig, cfg config.CacheConfig) *CacheModule {
	return &CacheModule{
		redisCfg: redisCfg,
		cfg:      cfg,
	}
}

// Name returns the module name.
func (m *CacheModule) Name() string {
	return "cache"
}

// Cache returns the cache. It is nil until Start succeeds.
func (m *CacheModule) Cache() *Cache {
	return m.cache
}

// Start connects to Redis.
func (m *CacheModule) Start(ctx context.Context) error {
	m.client = redis.NewClient(&redis.Options{
		Addr:         m.redisCfg.Addr,
		Password:     m.redisCfg.Password,
		DB:           m.redisCfg.DB,
		PoolSize:     20,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.cache = New(m.client, m.cfg.Prefix, m.cfg.TTL)
	log.Printf("[cache] Connected to Redis at %s (prefix: %s, TTL: %s)", m.redisCfg.Addr, m.cfg.Prefix, m.cfg.TTL)
	return nil
}

// Stop closes the Redis connection.
func (m *CacheModule) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			return fmt.Errorf("failed to close Redis connection: %w", err)
		}
	}
	log.Println("[cache] Module stopped")
	return nil
}

// RegisterEventConsumers subscribes the directory invalidation to every change event.
func (m *CacheModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1,
		func(ctx context.Context, _ events.TaskCreatedEvent, _ *mono.Msg) error { return m.invalidate(ctx) }, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1,
		func(ctx context.Context, _ events.TaskUpdatedEvent, _ *mono.Msg) error { return m.invalidate(ctx) }, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1,
		func(ctx context.Context, _ events.TaskCompletedEvent, _ *mono.Msg) error { return m.invalidate(ctx) }, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1,
		func(ctx context.Context, _ events.TaskDeletedEvent, _ *mono.Msg) error { return m.invalidate(ctx) }, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.UserRegisteredV1,
		func(ctx context.Context, _ events.UserRegisteredEvent, _ *mono.Msg) error { return m.invalidate(ctx) }, m); err != nil {
		return fmt.Errorf("failed to register UserRegistered consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.UserUpdatedV1,
		func(ctx context.Context, _ events.UserUpdatedEvent, _ *mono.Msg) error { return m.invalidate(ctx) }, m); err != nil {
		return fmt.Errorf("failed to register UserUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.UserDeletedV1,
		func(ctx context.Context, _ events.UserDeletedEvent, _ *mono.Msg) error { return m.invalidate(ctx) }, m); err != nil {
		return fmt.Errorf("failed to register UserDeleted consumer: %w", err)
	}
	return nil
}

func (m *CacheModule) invalidate(ctx context.Context) error {
	if m.cache == nil {
		return nil
	}
	if err := m.cache.Delete(ctx, DirectoryKey); err != nil {
		// the entry still expires after TTL
		log.Printf("[cache] Warning: failed to invalidate %s: %v", DirectoryKey, err)
	}
	return nil
}

// Health pings Redis and reports hit statistics.
func (m *CacheModule) Health(ctx context.Context) mono.HealthStatus {
	if m.cache == nil {
		return mono.HealthStatus{Healthy: false, Message: "not started"}
	}
	if err := m.cache.Ping(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	s := m.cache.Snapshot()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"hits":    s.Hits,
			"misses":  s.Misses,
			"sets":    s.Sets,
			"deletes": s.Deletes,
			"errors":  s.Errors,
		},
	}
}
