// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMongo    = "mongo"
)

// Config は環境変数から読み込む設定です。
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":5000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"arc.db"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"arc"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"1m"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"LOG_DEV"`

	AdminName     string `env:"ADMIN_NAME" envDefault:"Administrator"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load は.envがあれば読み込み、環境変数から設定を組み立てて検証します。
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		zap.L().Info(".env not found; using system environment variables")
	}
	return Parse()
}

// Parse は現在の環境変数のみから設定を組み立てます。
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	switch c.StoreDriver {
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case StoreSQLite, StoreMongo:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}

// BootstrapAdmin reports whether an admin account should be ensured at startup.
func (c *Config) BootstrapAdmin() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}
