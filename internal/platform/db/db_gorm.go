// Package db opens the relational store and migrates its tables.
package db

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	authadapters "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/adapters"
	oppadapters "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/adapters"
	useradapters "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/adapters"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Config はリレーショナルストアへの接続設定を保持します。
type Config struct {
	Driver         string
	URL            string // postgres DSN or URL
	SQLitePath     string
	ConnectTimeout time.Duration
	RunMigrations  bool
}

// Opener はDSNからDBを開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN はドライバーに応じた接続文字列を返します。
func BuildDSN(cfg Config) (string, error) {
	switch cfg.Driver {
	case DriverPostgres:
		if cfg.URL == "" {
			return "", errors.New("database url is required for postgres")
		}
		return cfg.URL, nil
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return "file::memory:?cache=shared", nil
		}
		return cfg.SQLitePath, nil
	default:
		return "", fmt.Errorf("unsupported relational driver %q", cfg.Driver)
	}
}

// openerFor returns the gorm opener of the configured driver.
func openerFor(driver string) Opener {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
	if driver == DriverSQLite {
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(sqlite.Open(dsn), gcfg) }
	}
	return func(dsn string) (*gorm.DB, error) { return gorm.Open(postgres.Open(dsn), gcfg) }
}

// ConnectWithRetry はタイムアウトまで接続をリトライします。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		zap.L().Warn("db connect failed, retrying", zap.Error(err), zap.Duration("interval", retryInterval))
		time.Sleep(retryInterval)
	}
}

// Open connects to the configured store and migrates it when asked to.
func Open(cfg Config) (*gorm.DB, error) {
	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	db, err := ConnectWithRetry(dsn, timeout, openerFor(cfg.Driver))
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		// sqlite serializes writers; one connection avoids "database is locked"
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	zap.L().Info("relational store ready", zap.String("driver", cfg.Driver), zap.Bool("migrated", cfg.RunMigrations))
	return db, nil
}

// Migrate creates or updates every table the stores use.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&useradapters.UserModel{},
		&oppadapters.OpportunityModel{},
		&oppadapters.MemberModel{},
		&authadapters.RevokedTokenModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
