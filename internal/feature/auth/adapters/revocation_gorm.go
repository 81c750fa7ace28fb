// Package adapters provides revocation store implementations for the auth feature.
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/usecase"
)

// revocationGorm is a relational implementation of the RevocationStore interface.
type revocationGorm struct {
	db  *gorm.DB
	now func() time.Time
}

// Compile-time check to ensure revocationGorm implements RevocationStore.
var _ usecase.RevocationStore = (*revocationGorm)(nil)

// NewRevocationGorm creates a new instance of revocationGorm.
func NewRevocationGorm(db *gorm.DB) *revocationGorm {
	return &revocationGorm{db: db, now: time.Now}
}

// Revoke inserts the token ID; a second revoke of the same ID is ignored.
func (r *revocationGorm) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if !expiresAt.After(r.now()) {
		return nil
	}
	model := &RevokedTokenModel{TokenID: tokenID, ExpiresAt: expiresAt, CreatedAt: r.now()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
}

// IsRevoked reports whether an unexpired revocation exists for tokenID.
func (r *revocationGorm) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&RevokedTokenModel{}).
		Where("token_id = ? AND expires_at > ?", tokenID, r.now()).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteExpired removes revocations whose tokens have expired anyway.
// Returns the number of deleted rows.
func (r *revocationGorm) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", r.now()).
		Delete(&RevokedTokenModel{})
	return result.RowsAffected, result.Error
}
