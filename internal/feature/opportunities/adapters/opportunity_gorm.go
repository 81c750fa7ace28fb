// Package adapters provides repository implementations for the opportunities feature.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/domain/entity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/usecase"
	useradapters "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/adapters"
)

// opportunityGorm is a GORM implementation of the OpportunityRepository interface.
type opportunityGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure opportunityGorm implements OpportunityRepository.
var _ usecase.OpportunityRepository = (*opportunityGorm)(nil)

// NewOpportunityGorm creates a new instance of opportunityGorm.
func NewOpportunityGorm(db *gorm.DB) *opportunityGorm {
	return &opportunityGorm{db: db}
}

// Create inserts the opportunity and copies back the assigned ID and timestamps.
func (r *opportunityGorm) Create(ctx context.Context, o *entity.Opportunity) error {
	if o == nil {
		return errors.New("nil opportunity")
	}
	model, ok := OpportunityModelFromEntity(o)
	if !ok {
		return fmt.Errorf("invalid organizer id %q", o.OrganizerID)
	}
	if err := r.db.WithContext(ctx).Omit("Members").Create(model).Error; err != nil {
		return err
	}
	*o = *model.ToEntity()
	return nil
}

// FindByID retrieves an opportunity with both membership sets.
func (r *opportunityGorm) FindByID(ctx context.Context, id string) (*entity.Opportunity, error) {
	pk, ok := useradapters.ParseID(id)
	if !ok {
		return nil, usecase.ErrOpportunityNotFound
	}
	var m OpportunityModel
	if err := r.db.WithContext(ctx).
		Preload("Members", orderMembers).
		Where("id = ?", pk).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrOpportunityNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// List returns matching opportunities in the requested order.
func (r *opportunityGorm) List(ctx context.Context, filter entity.Filter, sort entity.Sort, offset, limit int) ([]entity.Opportunity, error) {
	q, ok := r.scope(ctx, filter)
	if !ok {
		return []entity.Opportunity{}, nil
	}
	switch sort {
	case entity.SortIDDesc:
		q = q.Order("opportunities.id DESC")
	default:
		q = q.Order("opportunities.created_at DESC").Order("opportunities.id DESC")
	}

	var models []OpportunityModel
	if err := q.Preload("Members", orderMembers).
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]entity.Opportunity, len(models))
	for i := range models {
		out[i] = *models[i].ToEntity()
	}
	return out, nil
}

// Count returns the number of opportunities matching filter.
func (r *opportunityGorm) Count(ctx context.Context, filter entity.Filter) (int64, error) {
	q, ok := r.scope(ctx, filter)
	if !ok {
		return 0, nil
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateStatus overwrites the status and touches updated_at.
func (r *opportunityGorm) UpdateStatus(ctx context.Context, id string, status entity.Status, at time.Time) error {
	pk, ok := useradapters.ParseID(id)
	if !ok {
		return usecase.ErrOpportunityNotFound
	}
	result := r.db.WithContext(ctx).
		Model(&OpportunityModel{}).
		Where("id = ?", pk).
		Updates(map[string]any{"status": string(status), "updated_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrOpportunityNotFound
	}
	return nil
}

// AddMember inserts the membership row unless it already exists. The
// primary key on (opportunity_id, user_id, kind) decides races.
func (r *opportunityGorm) AddMember(ctx context.Context, opportunityID, playerID string, kind entity.MemberKind, at time.Time) (bool, error) {
	oid, ok := useradapters.ParseID(opportunityID)
	if !ok {
		return false, usecase.ErrOpportunityNotFound
	}
	uid, ok := useradapters.ParseID(playerID)
	if !ok {
		return false, fmt.Errorf("invalid player id %q", playerID)
	}

	added := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		touch := tx.Model(&OpportunityModel{}).Where("id = ?", oid).Update("updated_at", at)
		if touch.Error != nil {
			return touch.Error
		}
		if touch.RowsAffected == 0 {
			return usecase.ErrOpportunityNotFound
		}

		insert := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&MemberModel{
			OpportunityID: oid,
			UserID:        uid,
			Kind:          string(kind),
			CreatedAt:     at,
		})
		if insert.Error != nil {
			return insert.Error
		}
		added = insert.RowsAffected == 1
		if !added {
			// nothing changed; keep updated_at as it was
			return errNoChange
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return added, nil
}

var errNoChange = errors.New("membership unchanged")

// scope builds the filtered base query. ok is false when a filter ID cannot
// match any row.
func (r *opportunityGorm) scope(ctx context.Context, f entity.Filter) (*gorm.DB, bool) {
	q := r.db.WithContext(ctx).Model(&OpportunityModel{})
	if f.Status != nil {
		q = q.Where("opportunities.status = ?", string(*f.Status))
	}
	if f.OrganizerID != "" {
		pk, ok := useradapters.ParseID(f.OrganizerID)
		if !ok {
			return nil, false
		}
		q = q.Where("opportunities.organizer_id = ?", pk)
	}
	for kind, playerID := range map[entity.MemberKind]string{
		entity.MemberRegistered: f.RegisteredPlayerID,
		entity.MemberJoined:     f.JoinedPlayerID,
	} {
		if playerID == "" {
			continue
		}
		pk, ok := useradapters.ParseID(playerID)
		if !ok {
			return nil, false
		}
		q = q.Where("EXISTS (SELECT 1 FROM opportunity_members m WHERE m.opportunity_id = opportunities.id AND m.user_id = ? AND m.kind = ?)", pk, string(kind))
	}
	if f.EventAfter != nil {
		q = q.Where("opportunities.event_date > ?", *f.EventAfter)
	}
	if f.EventBefore != nil {
		q = q.Where("opportunities.event_date < ?", *f.EventBefore)
	}
	return q, true
}

func orderMembers(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("user_id ASC")
}
