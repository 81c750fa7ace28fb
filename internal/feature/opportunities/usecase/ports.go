// Package usecase implements the opportunity lifecycle: creation, moderation,
// membership and the organizer and player read models.
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/domain/entity"
	userentity "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/domain/entity"
)

// ErrOpportunityNotFound is returned by stores when no opportunity matches.
var ErrOpportunityNotFound = errors.New("opportunity not found")

// OpportunityRepository abstracts persistence for opportunities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type OpportunityRepository interface {
	// Create persists a new opportunity and fills in its ID and timestamps.
	Create(ctx context.Context, o *entity.Opportunity) error

	// FindByID returns ErrOpportunityNotFound when absent.
	FindByID(ctx context.Context, id string) (*entity.Opportunity, error)

	// List returns opportunities matching filter in the given order.
	List(ctx context.Context, filter entity.Filter, sort entity.Sort, offset, limit int) ([]entity.Opportunity, error)

	// Count uses the same predicate as List.
	Count(ctx context.Context, filter entity.Filter) (int64, error)

	// UpdateStatus overwrites the status and touches updatedAt.
	UpdateStatus(ctx context.Context, id string, status entity.Status, at time.Time) error

	// AddMember atomically adds playerID to the set named by kind if it is not
	// already there. added is false when the player was already a member.
	AddMember(ctx context.Context, opportunityID, playerID string, kind entity.MemberKind, at time.Time) (added bool, err error)
}

// UserLookup resolves user references held by opportunities.
type UserLookup interface {
	// FindByID returns the user regardless of its deleted flag.
	FindByID(ctx context.Context, id string) (*userentity.User, error)
	// FindByIDs returns the users that exist among ids.
	FindByIDs(ctx context.Context, ids []string) ([]userentity.User, error)
}
