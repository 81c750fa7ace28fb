package usecase

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/domain/entity"
	userentity "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/domain/entity"
	usersuc "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/usecase"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/metrics"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/apperr"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/sanitize"
)

const (
	msgOpportunityNotFound = "Opportunity not found"
	msgOrganizerNotFound   = "Organizer not found"
	msgPlayerNotFound      = "Player not found"
	msgInvalidStatus       = "Invalid status value"
	msgForbidden           = "Forbidden"
)

// membershipMessages holds the per-kind texts for register and join.
var membershipMessages = map[entity.MemberKind]struct {
	notApproved, duplicate, success string
}{
	entity.MemberRegistered: {
		notApproved: "Can only register for approved opportunities",
		duplicate:   "Player already registered for this opportunity",
		success:     "Successfully registered for opportunity",
	},
	entity.MemberJoined: {
		notApproved: "Can only join approved opportunities",
		duplicate:   "Player already joined this opportunity",
		success:     "Successfully joined opportunity",
	},
}

// CreateInput carries the body of a create request. Optional fields are nil when absent.
type CreateInput struct {
	Title       string
	Description string
	Location    *string
	EventDate   *time.Time
	Capacity    *int
	OrganizerID string
}

// LifecycleUsecase owns every mutation of an opportunity and its role-scoped reads.
type LifecycleUsecase struct {
	opportunities OpportunityRepository
	users         UserLookup
	now           func() time.Time
}

// NewLifecycleUsecase creates a LifecycleUsecase.
func NewLifecycleUsecase(opportunities OpportunityRepository, users UserLookup) *LifecycleUsecase {
	return &LifecycleUsecase{opportunities: opportunities, users: users, now: time.Now}
}

// Create stores a pending opportunity owned by the caller, or by an explicit
// organizer when one is named.
func (u *LifecycleUsecase) Create(ctx context.Context, actor identity.Principal, in CreateInput) (*entity.View, error) {
	in.Title = sanitize.Text(in.Title)
	in.Description = sanitize.Text(in.Description)
	in.Location = sanitize.OptionalText(in.Location)

	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error("Title is required")),
		validation.Field(&in.Description, validation.Required.Error("Description is required")),
		validation.Field(&in.Capacity, validation.NilOrNotEmpty.Error("Capacity must be at least 1"), validation.Min(1).Error("Capacity must be at least 1")),
	); err != nil {
		return nil, apperr.Wrap(apperr.InvalidArgument, firstValidationMessage(err, "Title", "Description", "Capacity"), err)
	}

	organizerID := actor.UserID
	if in.OrganizerID != "" && in.OrganizerID != actor.UserID {
		org, err := u.users.FindByID(ctx, in.OrganizerID)
		if err != nil && !errors.Is(err, usersuc.ErrUserNotFound) {
			return nil, apperr.Wrap(apperr.Internal, "find organizer", err)
		}
		if org == nil || org.IsDeleted || org.Role != identity.RoleOrganizer {
			return nil, apperr.New(apperr.InvalidArgument, "organizerId must reference an organizer")
		}
		organizerID = org.ID
	}

	o := &entity.Opportunity{
		Title:             in.Title,
		Description:       in.Description,
		Location:          in.Location,
		EventDate:         in.EventDate,
		Capacity:          in.Capacity,
		OrganizerID:       organizerID,
		Status:            entity.StatusPending,
		RegisteredPlayers: []string{},
		JoinedPlayers:     []string{},
	}
	if err := u.opportunities.Create(ctx, o); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "create opportunity", err)
	}
	metrics.OpportunitiesCreated.Inc()
	zap.L().Info("opportunity created",
		zap.String("opportunity_id", o.ID),
		zap.String("organizer_id", o.OrganizerID),
		zap.String("actor_id", actor.UserID),
	)

	views, err := u.project(ctx, []entity.Opportunity{*o})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// SetStatus moves an opportunity to any of the three statuses.
func (u *LifecycleUsecase) SetStatus(ctx context.Context, actor identity.Principal, id, rawStatus string) error {
	status, ok := entity.ParseStatus(rawStatus)
	if !ok {
		return apperr.New(apperr.InvalidArgument, msgInvalidStatus)
	}

	if err := u.opportunities.UpdateStatus(ctx, id, status, u.now()); err != nil {
		if errors.Is(err, ErrOpportunityNotFound) {
			return apperr.New(apperr.NotFound, msgOpportunityNotFound)
		}
		return apperr.Wrap(apperr.Internal, "update opportunity status", err)
	}
	metrics.OpportunityTransitions.WithLabelValues(string(status)).Inc()
	zap.L().Info("opportunity status updated",
		zap.String("opportunity_id", id),
		zap.String("status", string(status)),
		zap.String("actor_id", actor.UserID),
	)
	return nil
}

// Register adds the player to the opportunity's registered set.
// It returns the success message for the response body.
func (u *LifecycleUsecase) Register(ctx context.Context, actor identity.Principal, playerID, opportunityID string) (string, error) {
	return u.addMember(ctx, actor, playerID, opportunityID, entity.MemberRegistered)
}

// Join adds the player to the opportunity's joined set. Joining does not require registering first.
func (u *LifecycleUsecase) Join(ctx context.Context, actor identity.Principal, playerID, opportunityID string) (string, error) {
	return u.addMember(ctx, actor, playerID, opportunityID, entity.MemberJoined)
}

func (u *LifecycleUsecase) addMember(ctx context.Context, actor identity.Principal, playerID, opportunityID string, kind entity.MemberKind) (string, error) {
	msgs := membershipMessages[kind]

	if err := u.checkPlayerScope(ctx, actor, playerID); err != nil {
		return "", u.countMembership(kind, "rejected", err)
	}

	o, err := u.findOpportunity(ctx, opportunityID)
	if err != nil {
		return "", u.countMembership(kind, "rejected", err)
	}
	if o.Status != entity.StatusApproved {
		return "", u.countMembership(kind, "not_approved", apperr.New(apperr.InvalidState, msgs.notApproved))
	}

	// The store adds atomically; concurrent attempts for one player yield exactly one success.
	added, err := u.opportunities.AddMember(ctx, o.ID, playerID, kind, u.now())
	if err != nil {
		if errors.Is(err, ErrOpportunityNotFound) {
			return "", u.countMembership(kind, "rejected", apperr.New(apperr.NotFound, msgOpportunityNotFound))
		}
		return "", u.countMembership(kind, "error", apperr.Wrap(apperr.Internal, "add opportunity member", err))
	}
	if !added {
		return "", u.countMembership(kind, "duplicate", apperr.New(apperr.Conflict, msgs.duplicate))
	}

	metrics.MembershipActions.WithLabelValues(string(kind), "added").Inc()
	return msgs.success, nil
}

func (u *LifecycleUsecase) countMembership(kind entity.MemberKind, result string, err error) error {
	metrics.MembershipActions.WithLabelValues(string(kind), result).Inc()
	return err
}

func (u *LifecycleUsecase) findOpportunity(ctx context.Context, id string) (*entity.Opportunity, error) {
	o, err := u.opportunities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOpportunityNotFound) {
			return nil, apperr.New(apperr.NotFound, msgOpportunityNotFound)
		}
		return nil, apperr.Wrap(apperr.Internal, "find opportunity", err)
	}
	return o, nil
}

// checkOrganizerScope lets admins read any organizer and organizers read themselves.
// The path ID must name a user with the organizer role.
func (u *LifecycleUsecase) checkOrganizerScope(ctx context.Context, actor identity.Principal, organizerID string) error {
	if !actor.IsAdmin() && actor.UserID != organizerID {
		return apperr.New(apperr.Forbidden, msgForbidden)
	}
	return u.requireRole(ctx, organizerID, identity.RoleOrganizer, msgOrganizerNotFound)
}

// checkPlayerScope lets admins read any player and players act on themselves.
func (u *LifecycleUsecase) checkPlayerScope(ctx context.Context, actor identity.Principal, playerID string) error {
	if !actor.IsAdmin() && actor.UserID != playerID {
		return apperr.New(apperr.Forbidden, msgForbidden)
	}
	return u.requireRole(ctx, playerID, identity.RolePlayer, msgPlayerNotFound)
}

func (u *LifecycleUsecase) requireRole(ctx context.Context, id string, role identity.Role, notFound string) error {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, usersuc.ErrUserNotFound) {
			return apperr.New(apperr.NotFound, notFound)
		}
		return apperr.Wrap(apperr.Internal, "find user", err)
	}
	if user.Role != role {
		return apperr.New(apperr.NotFound, notFound)
	}
	return nil
}

// project joins each opportunity with its organizer in one lookup.
func (u *LifecycleUsecase) project(ctx context.Context, items []entity.Opportunity) ([]entity.View, error) {
	views := make([]entity.View, len(items))
	if len(items) == 0 {
		return views, nil
	}

	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, o := range items {
		if _, ok := seen[o.OrganizerID]; !ok {
			seen[o.OrganizerID] = struct{}{}
			ids = append(ids, o.OrganizerID)
		}
	}

	users, err := u.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "find organizers", err)
	}
	byID := make(map[string]*entity.Organizer, len(users))
	for i := range users {
		byID[users[i].ID] = organizerOf(&users[i])
	}

	for i, o := range items {
		views[i] = entity.View{Opportunity: o, Organizer: byID[o.OrganizerID]}
	}
	return views, nil
}

func organizerOf(u *userentity.User) *entity.Organizer {
	return &entity.Organizer{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Status:    string(u.Status),
		IsDeleted: u.IsDeleted,
		CreatedAt: u.CreatedAt,
	}
}

// firstValidationMessage picks a deterministic message out of ozzo's field map.
func firstValidationMessage(err error, order ...string) string {
	var errs validation.Errors
	if errors.As(err, &errs) {
		for _, field := range order {
			if fe, ok := errs[field]; ok && fe != nil {
				return fe.Error()
			}
		}
	}
	return "invalid request"
}
