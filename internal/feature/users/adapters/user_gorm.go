// Package adapters provides repository implementations for the users feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/domain/entity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/usecase"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// userGorm is a GORM implementation of the UserRepository interface.
type userGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure userGorm implements UserRepository.
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm creates a new instance of userGorm.
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create inserts the user. Returns usecase.ErrEmailAlreadyExists on a duplicate email.
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	model := UserModelFromEntity(u)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	*u = *model.ToEntity()
	return nil
}

// FindByID retrieves a user by ID, deleted or not.
func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	pk, ok := ParseID(id)
	if !ok {
		return nil, usecase.ErrUserNotFound
	}
	var m UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", pk).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// FindByEmail retrieves a user by email, deleted or not.
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// FindByIDs retrieves every user whose ID is in ids. Malformed IDs are skipped.
func (r *userGorm) FindByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	pks := make([]uint, 0, len(ids))
	for _, id := range ids {
		if pk, ok := ParseID(id); ok {
			pks = append(pks, pk)
		}
	}
	if len(pks) == 0 {
		return nil, nil
	}
	var models []UserModel
	if err := r.db.WithContext(ctx).Where("id IN ?", pks).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]entity.User, len(models))
	for i := range models {
		out[i] = *models[i].ToEntity()
	}
	return out, nil
}

// List returns users matching filter ordered by created_at descending.
func (r *userGorm) List(ctx context.Context, filter entity.Filter, offset, limit int) ([]entity.User, error) {
	var models []UserModel
	if err := r.scope(ctx, filter).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]entity.User, len(models))
	for i := range models {
		out[i] = *models[i].ToEntity()
	}
	return out, nil
}

// Count returns the number of users matching filter.
func (r *userGorm) Count(ctx context.Context, filter entity.Filter) (int64, error) {
	var n int64
	err := r.scope(ctx, filter).Count(&n).Error
	return n, err
}

// SoftDelete flags the user as deleted unless it already is.
func (r *userGorm) SoftDelete(ctx context.Context, id string, at time.Time) (bool, error) {
	pk, ok := ParseID(id)
	if !ok {
		return false, usecase.ErrUserNotFound
	}
	result := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ? AND is_deleted = ?", pk, false).
		Updates(map[string]any{
			"is_deleted": true,
			"deleted_at": at,
			"updated_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	// Nothing changed: either missing or already deleted.
	var n int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", pk).Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, usecase.ErrUserNotFound
	}
	return false, nil
}

// CountByRole groups every user by role, including soft-deleted ones.
func (r *userGorm) CountByRole(ctx context.Context) (map[identity.Role]int64, error) {
	var rows []struct {
		Role  string
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[identity.Role]int64, len(rows))
	for _, row := range rows {
		out[identity.Role(row.Role)] = row.Count
	}
	return out, nil
}

func (r *userGorm) scope(ctx context.Context, filter entity.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&UserModel{})
	if !filter.IncludeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	if filter.Role != nil {
		q = q.Where("role = ?", string(*filter.Role))
	}
	return q
}

// isUniqueViolation detects duplicate-key errors from either driver.
// gorm.ErrDuplicatedKey requires TranslateError in the gorm config.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
