package usecase

import (
	"context"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/domain/entity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/apperr"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/pagination"
)

const (
	organizerRecentLimit = 5
	playerRecentLimit    = 3
)

// OrganizerStats is the organizer dashboard aggregate.
type OrganizerStats struct {
	Total    int64
	Pending  int64
	Approved int64
	Closed   int64
	Recent   []entity.Opportunity
}

// PlayerStats is the player dashboard aggregate. The counts cover every
// registration regardless of the opportunity's current status.
type PlayerStats struct {
	Registered int64
	Upcoming   int64
	Past       int64
	Recent     []entity.Opportunity
}

// List returns a page of opportunities. Players only ever see approved ones.
func (u *LifecycleUsecase) List(ctx context.Context, actor identity.Principal, rawStatus string, page pagination.Page) ([]entity.View, pagination.Meta, error) {
	filter, err := statusFilter(rawStatus)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	if actor.Role == identity.RolePlayer {
		filter = filter.WithStatus(entity.StatusApproved)
	}
	return u.page(ctx, filter, page)
}

// Get returns one opportunity. A player asking for a non-approved one gets NotFound.
func (u *LifecycleUsecase) Get(ctx context.Context, actor identity.Principal, id string) (*entity.View, error) {
	o, err := u.findOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == identity.RolePlayer && o.Status != entity.StatusApproved {
		return nil, apperr.New(apperr.NotFound, msgOpportunityNotFound)
	}
	views, err := u.project(ctx, []entity.Opportunity{*o})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Count returns the number of opportunities matching the optional status.
func (u *LifecycleUsecase) Count(ctx context.Context, rawStatus string) (int64, error) {
	filter, err := statusFilter(rawStatus)
	if err != nil {
		return 0, err
	}
	n, err := u.opportunities.Count(ctx, filter)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "count opportunities", err)
	}
	return n, nil
}

// OrganizerOpportunities lists every opportunity of one organizer, any status.
func (u *LifecycleUsecase) OrganizerOpportunities(ctx context.Context, actor identity.Principal, organizerID string, page pagination.Page) ([]entity.View, pagination.Meta, error) {
	if err := u.checkOrganizerScope(ctx, actor, organizerID); err != nil {
		return nil, pagination.Meta{}, err
	}
	return u.page(ctx, entity.Filter{OrganizerID: organizerID}, page)
}

// PlayerOpportunities lists the approved opportunities the player registered for
// or joined, depending on kind.
func (u *LifecycleUsecase) PlayerOpportunities(ctx context.Context, actor identity.Principal, playerID string, kind entity.MemberKind, page pagination.Page) ([]entity.View, pagination.Meta, error) {
	if err := u.checkPlayerScope(ctx, actor, playerID); err != nil {
		return nil, pagination.Meta{}, err
	}
	filter := entity.Filter{}.WithStatus(entity.StatusApproved)
	if kind == entity.MemberJoined {
		filter.JoinedPlayerID = playerID
	} else {
		filter.RegisteredPlayerID = playerID
	}
	return u.page(ctx, filter, page)
}

// OrganizerDashboard counts the organizer's opportunities by status and returns the five newest.
func (u *LifecycleUsecase) OrganizerDashboard(ctx context.Context, actor identity.Principal, organizerID string) (*OrganizerStats, error) {
	if err := u.checkOrganizerScope(ctx, actor, organizerID); err != nil {
		return nil, err
	}

	base := entity.Filter{OrganizerID: organizerID}
	stats := &OrganizerStats{}
	counts := []struct {
		filter entity.Filter
		dst    *int64
	}{
		{base, &stats.Total},
		{base.WithStatus(entity.StatusPending), &stats.Pending},
		{base.WithStatus(entity.StatusApproved), &stats.Approved},
		{base.WithStatus(entity.StatusClosed), &stats.Closed},
	}
	for _, c := range counts {
		n, err := u.opportunities.Count(ctx, c.filter)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "count organizer opportunities", err)
		}
		*c.dst = n
	}

	recent, err := u.opportunities.List(ctx, base, entity.SortNewest, 0, organizerRecentLimit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list recent organizer opportunities", err)
	}
	stats.Recent = recent
	return stats, nil
}

// PlayerDashboard counts the player's registrations and returns the three with the highest store ID.
func (u *LifecycleUsecase) PlayerDashboard(ctx context.Context, actor identity.Principal, playerID string) (*PlayerStats, error) {
	if err := u.checkPlayerScope(ctx, actor, playerID); err != nil {
		return nil, err
	}

	now := u.now()
	base := entity.Filter{RegisteredPlayerID: playerID}
	upcoming := base
	upcoming.EventAfter = &now
	past := base
	past.EventBefore = &now

	stats := &PlayerStats{}
	counts := []struct {
		filter entity.Filter
		dst    *int64
	}{
		{base, &stats.Registered},
		{upcoming, &stats.Upcoming},
		{past, &stats.Past},
	}
	for _, c := range counts {
		n, err := u.opportunities.Count(ctx, c.filter)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "count player opportunities", err)
		}
		*c.dst = n
	}

	recent, err := u.opportunities.List(ctx, base, entity.SortIDDesc, 0, playerRecentLimit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list recent player opportunities", err)
	}
	stats.Recent = recent
	return stats, nil
}

func (u *LifecycleUsecase) page(ctx context.Context, filter entity.Filter, page pagination.Page) ([]entity.View, pagination.Meta, error) {
	total, err := u.opportunities.Count(ctx, filter)
	if err != nil {
		return nil, pagination.Meta{}, apperr.Wrap(apperr.Internal, "count opportunities", err)
	}
	items, err := u.opportunities.List(ctx, filter, entity.SortNewest, page.Offset(), page.Limit)
	if err != nil {
		return nil, pagination.Meta{}, apperr.Wrap(apperr.Internal, "list opportunities", err)
	}
	views, err := u.project(ctx, items)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return views, pagination.NewMeta(page, total), nil
}

func statusFilter(rawStatus string) (entity.Filter, error) {
	if rawStatus == "" {
		return entity.Filter{}, nil
	}
	status, ok := entity.ParseStatus(rawStatus)
	if !ok {
		return entity.Filter{}, apperr.New(apperr.InvalidArgument, msgInvalidStatus)
	}
	return entity.Filter{}.WithStatus(status), nil
}
