package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/domain/entity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/apperr"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/pagination"
)

// UserRepository abstracts persistence for user records.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user and fills in its ID and timestamps.
	// Returns ErrEmailAlreadyExists when the email is taken.
	Create(ctx context.Context, user *entity.User) error

	// FindByID returns the user regardless of its deleted flag.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// FindByEmail returns the user regardless of its deleted flag.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByIDs returns the users that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []string) ([]entity.User, error)

	// List returns users matching filter, newest first.
	List(ctx context.Context, filter entity.Filter, offset, limit int) ([]entity.User, error)

	// Count returns the number of users matching filter.
	Count(ctx context.Context, filter entity.Filter) (int64, error)

	// SoftDelete flags the user as deleted at t. It reports false when the
	// user was already deleted, and ErrUserNotFound when absent.
	SoftDelete(ctx context.Context, id string, at time.Time) (bool, error)

	// CountByRole counts every user, deleted or not, grouped by role.
	CountByRole(ctx context.Context) (map[identity.Role]int64, error)
}

// DirectoryUsecase serves the admin-facing read side of user records.
type DirectoryUsecase struct {
	users UserRepository
	now   func() time.Time
}

// NewDirectoryUsecase creates a DirectoryUsecase over the given repository.
func NewDirectoryUsecase(users UserRepository) *DirectoryUsecase {
	return &DirectoryUsecase{users: users, now: time.Now}
}

// List returns a page of non-deleted users, optionally narrowed to one role.
func (u *DirectoryUsecase) List(ctx context.Context, rawRole string, page pagination.Page) ([]entity.User, pagination.Meta, error) {
	filter := entity.Filter{}
	if rawRole != "" {
		role, ok := identity.ParseRole(rawRole)
		if !ok {
			return nil, pagination.Meta{}, apperr.New(apperr.InvalidArgument, "Invalid role value")
		}
		filter.Role = &role
	}

	total, err := u.users.Count(ctx, filter)
	if err != nil {
		return nil, pagination.Meta{}, apperr.Wrap(apperr.Internal, "count users", err)
	}
	users, err := u.users.List(ctx, filter, page.Offset(), page.Limit)
	if err != nil {
		return nil, pagination.Meta{}, apperr.Wrap(apperr.Internal, "list users", err)
	}
	return users, pagination.NewMeta(page, total), nil
}

// Get returns a single non-deleted user.
func (u *DirectoryUsecase) Get(ctx context.Context, id string) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.New(apperr.NotFound, "User not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "find user", err)
	}
	if user.IsDeleted {
		return nil, apperr.New(apperr.NotFound, "User not found")
	}
	return user, nil
}

// SoftDelete marks the user as deleted. Deleting an already deleted user
// succeeds and keeps the first deletion time.
func (u *DirectoryUsecase) SoftDelete(ctx context.Context, id string) error {
	if _, err := u.users.SoftDelete(ctx, id, u.now()); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperr.New(apperr.NotFound, "User not found")
		}
		return apperr.Wrap(apperr.Internal, "soft delete user", err)
	}
	return nil
}

// CountByRole returns a count for every role, including soft-deleted users.
func (u *DirectoryUsecase) CountByRole(ctx context.Context) (map[identity.Role]int64, error) {
	counts, err := u.users.CountByRole(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "count users by role", err)
	}
	out := make(map[identity.Role]int64, len(identity.Roles))
	for _, r := range identity.Roles {
		out[r] = counts[r]
	}
	return out, nil
}
