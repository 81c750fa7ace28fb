package usecase

import (
	"context"
	"errors"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/domain/permission"
	usersuc "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/usecase"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/metrics"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/apperr"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
)

const (
	msgUnauthenticated = "Please authenticate."
	msgForbidden       = "Forbidden"
)

// Guard resolves a bearer token to a live user and checks the permission table.
// It holds no per-request state.
type Guard struct {
	tokens      TokenService
	users       UserStore
	revocations RevocationStore
}

// NewGuard creates a Guard.
func NewGuard(tokens TokenService, users UserStore, revocations RevocationStore) *Guard {
	return &Guard{tokens: tokens, users: users, revocations: revocations}
}

// Authorize returns the principal for rawToken when its user may perform op.
// Missing, invalid, revoked or orphaned credentials are Unauthenticated;
// a live user whose role is not allowed is Forbidden.
func (g *Guard) Authorize(ctx context.Context, rawToken string, op permission.Operation) (identity.Principal, error) {
	if rawToken == "" {
		return deny("missing", apperr.New(apperr.Unauthenticated, msgUnauthenticated))
	}

	claims, err := g.tokens.Parse(rawToken)
	if err != nil {
		return deny("invalid", apperr.New(apperr.Unauthenticated, msgUnauthenticated))
	}

	if g.revocations != nil {
		revoked, err := g.revocations.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return deny("error", apperr.Wrap(apperr.Internal, "check token revocation", err))
		}
		if revoked {
			return deny("revoked", apperr.New(apperr.Unauthenticated, msgUnauthenticated))
		}
	}

	user, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, usersuc.ErrUserNotFound) {
			return deny("unknown_user", apperr.New(apperr.Unauthenticated, msgUnauthenticated))
		}
		return deny("error", apperr.Wrap(apperr.Internal, "resolve token user", err))
	}
	if user.IsDeleted {
		return deny("deleted_user", apperr.New(apperr.Unauthenticated, msgUnauthenticated))
	}

	// The stored role wins over the one embedded at issue time.
	if !permission.Allowed(op, user.Role) {
		return deny("forbidden", apperr.New(apperr.Forbidden, msgForbidden))
	}

	metrics.AuthDecisions.WithLabelValues("allowed").Inc()
	return identity.Principal{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func deny(outcome string, err error) (identity.Principal, error) {
	metrics.AuthDecisions.WithLabelValues(outcome).Inc()
	return identity.Principal{}, err
}
