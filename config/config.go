// Package config loads application settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// HTTPConfig configures the web server.
type HTTPConfig struct {
	Addr    string `yaml:"addr" env:"HTTP_ADDR" env-default:":3000"`
	AppName string `yaml:"app_name" env:"HTTP_APP_NAME" env-default:"Task Tracker"`
}

// DatabaseConfig selects the gorm dialector and its DSN.
type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	DSN    string `yaml:"dsn" env:"DB_DSN" env-default:"file:tracker.db?_foreign_keys=on"`
}

// AuthConfig configures passwords and session tokens.
type AuthConfig struct {
	SessionSecret string        `yaml:"session_secret" env:"SESSION_SECRET"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"12h"`
	Issuer        string        `yaml:"issuer" env:"SESSION_ISSUER" env-default:"task-tracker"`
	CookieName    string        `yaml:"cookie_name" env:"SESSION_COOKIE" env-default:"tracker_session"`
	CookieSecure  bool          `yaml:"cookie_secure" env:"SESSION_COOKIE_SECURE" env-default:"false"`
	BcryptCost    int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"12"`
}

// RedisConfig is shared by the cache and rate limiter. An empty Addr disables both.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// RateLimitConfig limits POST /login/ and POST /signup/ per client IP.
type RateLimitConfig struct {
	Requests int           `yaml:"requests" env:"RATE_LIMIT_REQUESTS" env-default:"10"`
	Window   time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"1m"`
}

// CacheConfig configures the home page cache.
type CacheConfig struct {
	TTL    time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"30s"`
	Prefix string        `yaml:"prefix" env:"CACHE_PREFIX" env-default:"tracker:"`
}

// BootstrapConfig creates a superuser on startup when all fields are set.
type BootstrapConfig struct {
	AdminUsername string `yaml:"admin_username" env:"ADMIN_USERNAME"`
	AdminEmail    string `yaml:"admin_email" env:"ADMIN_EMAIL"`
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD"`
}

// LogConfig mirrors logger.Config.
type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format     string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
	Output     string `yaml:"output" env:"LOG_OUTPUT" env-default:"stdout"`
	FilePath   string `yaml:"file_path" env:"LOG_FILE" env-default:"logs/tracker.log"`
	MaxSize    int    `yaml:"max_size" env:"LOG_MAX_SIZE" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"5"`
	MaxAge     int    `yaml:"max_age" env:"LOG_MAX_AGE" env-default:"30"`
	Compress   bool   `yaml:"compress" env:"LOG_COMPRESS" env-default:"true"`
}

// Config is the full application configuration.
type Config struct {
	HTTP            HTTPConfig      `yaml:"http"`
	Database        DatabaseConfig  `yaml:"database"`
	Auth            AuthConfig      `yaml:"auth"`
	Redis           RedisConfig     `yaml:"redis"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
	Cache           CacheConfig     `yaml:"cache"`
	Bootstrap       BootstrapConfig `yaml:"bootstrap"`
	Log             LogConfig       `yaml:"log"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// Load reads an optional .env file, then the YAML file at path (if any), then the
// environment. Environment values override file values.
func Load(path string) (*Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read env: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return nil, fmt.Errorf("cannot read config %q: %w", path, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	if c.Auth.SessionSecret == "" {
		return errors.New("SESSION_SECRET must be set")
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("rate limit requests and window must be positive")
	}
	return nil
}

// Enabled reports whether every bootstrap field is set.
func (b BootstrapConfig) Enabled() bool {
	return b.AdminUsername != "" && b.AdminEmail != "" && b.AdminPassword != ""
}

// RedisEnabled reports whether Redis backed modules should be registered.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}
