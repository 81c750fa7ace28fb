// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/domain/entity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/usecase"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/metrics"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
)

// CachingUserRepository decorates a UserRepository with Redis caching of the
// count queries. Reads of single users are never cached so a soft delete is
// visible to the guard immediately.
type CachingUserRepository struct {
	usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.UserRepository = (*CachingUserRepository)(nil)

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 1 minute. If namespace is empty, it uses "users".
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserRepository{
		UserRepository: inner,
		rdb:            rdb,
		ttl:            ttl,
		namespace:      namespace,
	}
}

// Create inserts the user and drops every cached count.
func (c *CachingUserRepository) Create(ctx context.Context, u *entity.User) error {
	if err := c.UserRepository.Create(ctx, u); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// SoftDelete flags the user and drops cached counts when something changed.
func (c *CachingUserRepository) SoftDelete(ctx context.Context, id string, at time.Time) (bool, error) {
	changed, err := c.UserRepository.SoftDelete(ctx, id, at)
	if err != nil {
		return false, err
	}
	if changed {
		c.invalidate(ctx)
	}
	return changed, nil
}

// Count returns the filtered user count, checking cache first.
func (c *CachingUserRepository) Count(ctx context.Context, filter entity.Filter) (int64, error) {
	if c.rdb == nil {
		return c.UserRepository.Count(ctx, filter)
	}

	role := "all"
	if filter.Role != nil {
		role = filter.Role.String()
	}
	key := joinKey(c.namespace, "count", role, strconv.FormatBool(filter.IncludeDeleted))

	var n int64
	if c.lookup(ctx, key, &n) {
		return n, nil
	}
	n, err := c.UserRepository.Count(ctx, filter)
	if err != nil {
		return 0, err
	}
	c.store(ctx, key, n)
	return n, nil
}

// CountByRole returns the per-role totals, checking cache first.
func (c *CachingUserRepository) CountByRole(ctx context.Context) (map[identity.Role]int64, error) {
	if c.rdb == nil {
		return c.UserRepository.CountByRole(ctx)
	}

	key := joinKey(c.namespace, "count-by-role")
	var out map[identity.Role]int64
	if c.lookup(ctx, key, &out) {
		return out, nil
	}
	out, err := c.UserRepository.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out)
	return out, nil
}

// lookup decodes a cached value into dst. Corrupted entries are deleted.
func (c *CachingUserRepository) lookup(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil && len(b) > 0 {
		if err := json.Unmarshal(b, dst); err == nil {
			metrics.CacheLookups.WithLabelValues(c.namespace, "hit").Inc()
			return true
		}
		_ = c.rdb.Del(ctx, key).Err()
	}
	metrics.CacheLookups.WithLabelValues(c.namespace, "miss").Inc()
	return false
}

// store writes v best effort.
func (c *CachingUserRepository) store(ctx context.Context, key string, v any) {
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

// invalidate drops every count key. A failure only delays freshness until the TTL.
func (c *CachingUserRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.deleteByPattern(ctx, c.namespace+":count*"); err != nil {
		zap.L().Warn("user count cache invalidation failed", zap.Error(err))
	}
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingUserRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}
