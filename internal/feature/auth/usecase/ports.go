// Package usecase implements credential handling and the authorization guard.
package usecase

import (
	"context"
	"time"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/domain/entity"
	jwtmw "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/jwt"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
)

// UserStore is the slice of the user store that authentication needs.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserStore interface {
	// Create persists a new user. Returns users' ErrEmailAlreadyExists when the email is taken.
	Create(ctx context.Context, user *entity.User) error
	// FindByID returns the user regardless of its deleted flag.
	FindByID(ctx context.Context, id string) (*entity.User, error)
	// FindByEmail returns the user regardless of its deleted flag.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	Issue(userID, email string, role identity.Role) (string, jwtmw.Claims, error)
	Parse(token string) (jwtmw.Claims, error)
}

// RevocationStore remembers token IDs that were logged out before they expired.
type RevocationStore interface {
	// Revoke records tokenID as revoked until expiresAt. Revoking twice is not an error.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	// IsRevoked reports whether tokenID is currently revoked.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
