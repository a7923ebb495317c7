package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/modules/account"
	"github.com/example/task-tracker/modules/audit"
	"github.com/example/task-tracker/modules/cache"
	"github.com/example/task-tracker/modules/ratelimit"
	"github.com/example/task-tracker/modules/store"
	"github.com/example/task-tracker/modules/task"
	"github.com/example/task-tracker/modules/web"
	"github.com/example/task-tracker/pkg/logger"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/ilyakaznacheev/cleanenv"
)

func main() {
	var cfg config.Config
	fset := flag.NewFlagSet("task-tracker", flag.ExitOnError)
	configPath := fset.String("config", "", "path to a YAML config file (optional)")
	fset.Usage = cleanenv.FUsage(fset.Output(), &cfg, nil, fset.Usage)
	_ = fset.Parse(os.Args[1:])

	loaded, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg = *loaded

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log.Println("=== Task Tracker ===")

	monoLevel := mono.LogLevelInfo
	if strings.EqualFold(cfg.Log.Level, "error") {
		monoLevel = mono.LogLevelError
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(monoLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	storeModule := store.NewModule(cfg.Database, strings.EqualFold(cfg.Log.Level, "debug"))
	auditModule := audit.NewModule(logger.Get(), audit.DefaultCapacity)
	checks := []web.HealthChecker{storeModule, auditModule}

	var webOpts []web.Option

	// Start order follows each module's Dependencies(), not registration order.
	app.Register(storeModule)
	app.Register(account.NewModule(storeModule, cfg.Auth, cfg.Bootstrap))
	app.Register(task.NewModule(storeModule))
	app.Register(auditModule)

	if cfg.RedisEnabled() {
		cacheModule := cache.NewModule(cfg.Redis, cfg.Cache)
		rateLimitModule := ratelimit.NewModule(cfg.Redis, cfg.RateLimit)
		app.Register(cacheModule)
		app.Register(rateLimitModule)
		checks = append(checks, cacheModule, rateLimitModule)
		webOpts = append(webOpts, web.WithCache(cacheModule), web.WithThrottle(rateLimitModule))
	} else {
		log.Println("REDIS_ADDR not set: home page cache and login throttling disabled")
	}

	webOpts = append(webOpts, web.WithHealthChecks(checks...))
	app.Register(web.NewModule(cfg.HTTP, cfg.Auth, webOpts...))

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(&cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg *config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("Database: %s", cfg.Database.Driver)
	if cfg.RedisEnabled() {
		log.Printf("Redis: %s (cache TTL %s, %d login attempts per %s)", cfg.Redis.Addr, cfg.Cache.TTL, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}
	log.Println("")
	log.Printf("Pages (http://localhost%s):", cfg.HTTP.Addr)
	log.Println("  GET       /                    - Users and their tasks")
	log.Println("  GET,POST  /signup/             - Create an account")
	log.Println("  GET,POST  /login/              - Log in")
	log.Println("  POST      /logout/             - Log out")
	log.Println("  GET       /tasks/              - Task list (?status=&priority=&q=)")
	log.Println("  GET,POST  /tasks/create/       - New task")
	log.Println("  GET,POST  /tasks/:id/edit/     - Edit task")
	log.Println("  GET,POST  /tasks/:id/delete/   - Delete task")
	log.Println("  POST      /tasks/:id/complete/ - Mark task done")
	log.Println("  GET       /users/              - User list")
	log.Println("  GET       /users/:id/          - Profile and tasks")
	log.Println("  GET,POST  /users/:id/edit/     - Edit profile")
	log.Println("  GET,POST  /users/:id/delete/   - Delete profile")
	log.Println("  GET       /health              - Module health")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
