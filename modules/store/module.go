// Package store owns the database connection shared by the account and task modules.
package store

import (
	"context"
	"fmt"
	"log"

	"github.com/example/task-tracker/config"
	"github.com/go-monolith/mono"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// StoreModule opens the database, runs migrations and reports database health.
type StoreModule struct {
	cfg   config.DatabaseConfig
	debug bool
	db    *gorm.DB
}

// Compile-time interface checks.
var _ mono.Module = (*StoreModule)(nil)
var _ mono.HealthCheckableModule = (*StoreModule)(nil)

// NewModule creates a new StoreModule. debug turns on gorm SQL logging.
func NewModule(cfg config.DatabaseConfig, debug bool) *StoreModule {
	return &StoreModule{cfg: cfg, debug: debug}
}

// Name returns the module name.
func (m *StoreModule) Name() string {
	return "store"
}

// DB returns the connection, or nil before Start.
func (m *StoreModule) DB() *gorm.DB {
	return m.db
}

// Start connects to the database and runs migrations.
func (m *StoreModule) Start(_ context.Context) error {
	log.Printf("[store] Connecting to %s database", m.cfg.Driver)

	logLevel := logger.Silent
	if m.debug {
		logLevel = logger.Info
	}

	db, err := Open(m.cfg, logLevel)
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return err
	}
	m.db = db

	log.Println("[store] Module started successfully")
	return nil
}

// Stop closes the database connection.
func (m *StoreModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	log.Println("[store] Closing database connection...")

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	log.Println("[store] Database connection closed")
	return nil
}

// Health pings the database.
func (m *StoreModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	stats := sqlDB.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver":           m.cfg.Driver,
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
		},
	}
}
