// Package web serves the browser front end: server-rendered pages over the
// account and task modules.
package web

import (
	"context"
	"fmt"
	"log"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/modules/account"
	"github.com/example/task-tracker/modules/cache"
	"github.com/example/task-tracker/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
)

// CacheProvider exposes the home page cache once its module has started.
type CacheProvider interface {
	Name() string
	Cache() *cache.Cache
}

// ThrottleProvider exposes the login and sign-up throttle once its module has started.
type ThrottleProvider interface {
	Name() string
	Middleware() fiber.Handler
}

// WebModule is the HTTP front end.
type WebModule struct {
	http     config.HTTPConfig
	auth     config.AuthConfig
	app      *fiber.App
	accounts account.Port
	tasks    task.Port
	cache    CacheProvider
	throttle ThrottleProvider
	health   []HealthChecker
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*WebModule)(nil)
	_ mono.DependentModule       = (*WebModule)(nil)
	_ mono.HealthCheckableModule = (*WebModule)(nil)
)

// Option configures optional collaborators.
type Option func(*WebModule)

// WithCache reads the home page directory through the given cache.
func WithCache(p CacheProvider) Option {
	return func(m *WebModule) { m.cache = p }
}

// WithThrottle limits POST /login/ and POST /signup/.
func WithThrottle(p ThrottleProvider) Option {
	return func(m *WebModule) { m.throttle = p }
}

// WithHealthChecks reports the given modules on /health.
func WithHealthChecks(checks ...HealthChecker) Option {
	return func(m *WebModule) { m.health = append(m.health, checks...) }
}

// NewModule creates a new WebModule.
func NewModule(httpCfg config.HTTPConfig, auth config.AuthConfig, opts ...Option) *WebModule {
	m := &WebModule{http: httpCfg, auth: auth}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the module name.
func (m *WebModule) Name() string {
	return "web"
}

// Dependencies returns the list of module dependencies.
// The cache and throttle modules are included when configured so they are
// started before the fiber app resolves them.
func (m *WebModule) Dependencies() []string {
	deps := []string{"account", "task"}
	if m.cache != nil {
		deps = append(deps, m.cache.Name())
	}
	if m.throttle != nil {
		deps = append(deps, m.throttle.Name())
	}
	return deps
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *WebModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "account":
		m.accounts = account.NewAdapter(container)
	case "task":
		m.tasks = task.NewAdapter(container)
	}
}

// Start builds the fiber app and starts listening.
func (m *WebModule) Start(_ context.Context) error {
	if m.accounts == nil || m.tasks == nil {
		return fmt.Errorf("account and task dependencies not set")
	}

	deps := Deps{
		Accounts: m.accounts,
		Tasks:    m.tasks,
		Health:   m.health,
		Auth:     m.auth,
		AppName:  m.http.AppName,
	}
	if m.cache != nil {
		c := m.cache.Cache()
		if c == nil {
			return fmt.Errorf("%s module not started", m.cache.Name())
		}
		deps.Cache = c
	}
	if m.throttle != nil {
		h := m.throttle.Middleware()
		if h == nil {
			return fmt.Errorf("%s module not started", m.throttle.Name())
		}
		deps.Throttle = h
	}

	app, err := NewApp(deps)
	if err != nil {
		return fmt.Errorf("failed to build HTTP app: %w", err)
	}
	m.app = app

	go func() {
		if err := m.app.Listen(m.http.Addr); err != nil {
			log.Printf("[web] HTTP server error: %v", err)
		}
	}()

	log.Printf("[web] HTTP server started on %s", m.http.Addr)
	return nil
}

// Stop shuts down the HTTP server.
func (m *WebModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[web] Shutting down HTTP server...")
	return m.app.ShutdownWithContext(ctx)
}

// Health returns the health status of the module.
func (m *WebModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.http.Addr,
		},
	}
}
