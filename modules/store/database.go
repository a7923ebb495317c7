package store

import (
	"fmt"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database. Errors from the driver are translated
// to gorm.ErrDuplicatedKey and friends so repositories can match on them.
func Open(cfg config.DatabaseConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema. Users go first so the tasks.owner_id
// foreign key can reference them.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&user.User{}, &task.Task{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MemoryConfig returns a private in-memory SQLite database with foreign keys on.
// The shared cache keeps one database across all pooled connections.
func MemoryConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
	}
}

// OpenMemory opens and migrates a MemoryConfig database.
func OpenMemory() (*gorm.DB, error) {
	db, err := Open(MemoryConfig(), logger.Silent)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
