// Package entity defines the domain entities for the users feature.
package entity

import (
	"time"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
)

// Status is the account status of a user.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// User represents an account in the marketplace.
// PasswordHash is opaque to everything except the auth feature and is never
// serialized to clients.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         identity.Role
	PasswordHash string
	Status       Status

	// IsDeleted and DeletedAt move together: DeletedAt is set exactly when IsDeleted is true.
	IsDeleted bool
	DeletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter narrows user listings.
type Filter struct {
	Role           *identity.Role
	IncludeDeleted bool
}
