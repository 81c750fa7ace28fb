// Package redis opens the optional Redis connection used for token revocation and caching.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds the connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings Redis. A failed ping closes the client.
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		zap.L().Error("Redis connection failed", zap.String("address", cfg.Addr), zap.Error(err))
		_ = rdb.Close()
		return nil, err
	}

	zap.L().Info("Redis connection successful", zap.String("address", cfg.Addr))
	return rdb, nil
}
