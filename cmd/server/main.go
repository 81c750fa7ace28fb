package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/app/di"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/app/router"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/config"
	authhandler "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/transport/handler"
	authusecase "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/usecase"
	opphandler "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/transport/handler"
	oppusecase "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/usecase"
	userhandler "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/transport/handler"
	userusecase "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/usecase"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/db"
	platformhandler "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/http/handler"
	jwtmw "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/jwt"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/logger"
	platformmongo "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/mongo"
	platformredis "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/redis"
)

func main() {
	// stderr also covers failures before the zap logger exists
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, undo, err := logger.Install(logger.Config{Level: cfg.LogLevel, Dev: cfg.LogDev})
	if err != nil {
		return err
	}
	defer undo()
	// runs before undo so the error reaches the installed logger
	defer func() { err = logExit(log, err) }()
	if !cfg.LogDev {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis（任意）
	var rdb *redisv9.Client
	if cfg.RedisAddr != "" {
		if tmp, err := platformredis.NewRedisClient(ctx, platformredis.Config{
			Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB,
		}); err != nil {
			log.Warn("Redis unavailable. Running without cache.", zap.Error(err))
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Error("Failed to close Redis client", zap.Error(err))
				}
			}()
		}
	}

	// Store
	stores, closeStores, err := openStores(ctx, cfg, rdb)
	if err != nil {
		return err
	}
	defer closeStores()

	// Usecase
	tokens := jwtmw.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	authUC := authusecase.NewAuthUsecase(stores.Users, tokens, stores.Revocations)
	guard := authusecase.NewGuard(tokens, stores.Users, stores.Revocations)
	directoryUC := userusecase.NewDirectoryUsecase(stores.Users)
	lifecycleUC := oppusecase.NewLifecycleUsecase(stores.Opportunities, stores.Users)

	if cfg.BootstrapAdmin() {
		created, err := authUC.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return err
		}
		log.Info("admin bootstrap", zap.String("email", cfg.AdminEmail), zap.Bool("created", created))
	}

	// ルータ生成
	engine := router.NewRouter(guard, router.Handlers{
		Auth:          authhandler.NewAuthHandler(authUC),
		Users:         userhandler.NewUserHandler(directoryUC),
		Opportunities: opphandler.NewOpportunityHandler(lifecycleUC),
		Health:        platformhandler.NewHealthHandler(stores.Checks...),
	}, router.Options{CORSOrigins: cfg.CORSOrigins, Logger: log})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStores connects the configured backend and returns the stores plus a closer.
func openStores(ctx context.Context, cfg *config.Config, rdb *redisv9.Client) (*di.Stores, func(), error) {
	if cfg.StoreDriver == config.StoreMongo {
		client, mdb, err := platformmongo.Connect(ctx, platformmongo.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
		if err != nil {
			return nil, nil, err
		}
		closer := func() { _ = client.Disconnect(context.Background()) }
		if err := platformmongo.EnsureIndexes(ctx, mdb); err != nil {
			closer()
			return nil, nil, err
		}
		return di.NewDocumentStores(mdb, rdb, cfg.CacheTTL), closer, nil
	}

	gdb, err := db.Open(db.Config{
		Driver:        cfg.StoreDriver,
		URL:           cfg.DatabaseURL,
		SQLitePath:    cfg.SQLitePath,
		RunMigrations: cfg.RunMigrations,
	})
	if err != nil {
		return nil, nil, err
	}
	closer := func() { closeGorm(gdb) }
	if err := di.SweepRevocations(ctx, gdb); err != nil {
		zap.L().Warn("revocation sweep failed", zap.Error(err))
	}
	return di.NewRelationalStores(gdb, rdb, cfg.CacheTTL), closer, nil
}

// logExit writes a fatal error to l and passes it through.
func logExit(l *zap.Logger, err error) error {
	if err != nil {
		l.Error("server exited", zap.Error(err))
	}
	return err
}

func closeGorm(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
