// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authadapters "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/adapters"
	authusecase "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/usecase"
	oppadapters "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/adapters"
	oppusecase "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/usecase"
	useradapters "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/adapters"
	userusecase "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/usecase"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/cache"
	platformhandler "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/http/handler"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/session"
)

// Stores is the set of persistence components the use cases run on.
type Stores struct {
	Users         userusecase.UserRepository
	Opportunities oppusecase.OpportunityRepository
	Revocations   authusecase.RevocationStore
	Checks        []platformhandler.Check
}

// NewRelationalStores builds the gorm-backed stores. rdb may be nil.
func NewRelationalStores(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *Stores {
	users := NewUserRepository(rdb, cacheTTL, useradapters.NewUserGorm(db))
	s := &Stores{
		Users:         users,
		Opportunities: oppadapters.NewOpportunityGorm(db),
		Revocations:   NewRevocationStore(rdb, db, nil),
		Checks: []platformhandler.Check{{Name: "db", Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}}},
	}
	s.addRedisCheck(rdb)
	return s
}

// NewDocumentStores builds the Mongo-backed stores. rdb may be nil.
func NewDocumentStores(mdb *mongo.Database, rdb *redis.Client, cacheTTL time.Duration) *Stores {
	users := NewUserRepository(rdb, cacheTTL, useradapters.NewUserMongo(mdb))
	s := &Stores{
		Users:         users,
		Opportunities: oppadapters.NewOpportunityMongo(mdb),
		Revocations:   NewRevocationStore(rdb, nil, mdb),
		Checks: []platformhandler.Check{{Name: "mongo", Ping: func(ctx context.Context) error {
			return mdb.Client().Ping(ctx, nil)
		}}},
	}
	s.addRedisCheck(rdb)
	return s
}

func (s *Stores) addRedisCheck(rdb *redis.Client) {
	if rdb == nil {
		return
	}
	s.Checks = append(s.Checks, platformhandler.Check{Name: "redis", Ping: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}})
}

// NewUserRepository wraps the user store with the Redis count cache.
// Without Redis the cache is bypassed.
func NewUserRepository(rdb *redis.Client, ttl time.Duration, inner userusecase.UserRepository) userusecase.UserRepository {
	if rdb == nil {
		return inner
	}
	return cache.NewCachingUserRepository(rdb, ttl, inner, "users")
}

// NewRevocationStore creates a RevocationStore implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the relational store, then to Mongo.
func NewRevocationStore(rdb *redis.Client, db *gorm.DB, mdb *mongo.Database) authusecase.RevocationStore {
	switch {
	case rdb != nil:
		return session.NewRevocationRedis(rdb, "arc")
	case db != nil:
		return authadapters.NewRevocationGorm(db)
	case mdb != nil:
		return authadapters.NewRevocationMongo(mdb)
	}
	return nil
}

// SweepRevocations drops expired rows from the relational deny-list. Redis
// and Mongo expire entries on their own.
func SweepRevocations(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("no relational store")
	}
	n, err := authadapters.NewRevocationGorm(db).DeleteExpired(ctx)
	if err != nil {
		return err
	}
	zap.L().Info("expired revocations removed", zap.Int64("count", n))
	return nil
}
