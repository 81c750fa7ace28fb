// Package entity defines the domain entities for the opportunities feature.
package entity

import (
	"strings"
	"time"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
)

// Status is the moderation state of an opportunity. An admin may move it between any two values.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusClosed   Status = "closed"
)

// Statuses lists every valid status in a stable order.
var Statuses = []Status{StatusPending, StatusApproved, StatusClosed}

// ParseStatus normalizes s and reports whether it names a known status.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusApproved, StatusClosed:
		return st, true
	}
	return "", false
}

// MemberKind selects one of the two independent membership sets.
type MemberKind string

const (
	MemberRegistered MemberKind = "registered"
	MemberJoined     MemberKind = "joined"
)

// Opportunity is an event posted by an organizer.
// RegisteredPlayers and JoinedPlayers hold each player ID at most once; order carries no meaning.
type Opportunity struct {
	ID          string
	Title       string
	Description string
	Location    *string
	EventDate   *time.Time
	Capacity    *int

	// OrganizerID never changes after creation.
	OrganizerID string
	Status      Status

	RegisteredPlayers []string
	JoinedPlayers     []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasMember reports whether playerID is in the set named by kind.
func (o *Opportunity) HasMember(kind MemberKind, playerID string) bool {
	set := o.RegisteredPlayers
	if kind == MemberJoined {
		set = o.JoinedPlayers
	}
	for _, id := range set {
		if id == playerID {
			return true
		}
	}
	return false
}

// Organizer is the read-time projection of the organizing user.
type Organizer struct {
	ID        string
	Name      string
	Email     string
	Role      identity.Role
	Status    string
	IsDeleted bool
	CreatedAt time.Time
}

// View is an opportunity joined with its organizer. Organizer is nil when the
// referenced user no longer resolves.
type View struct {
	Opportunity
	Organizer *Organizer
}

// Sort selects the listing order.
type Sort int

const (
	// SortNewest orders by createdAt descending, ties by ID descending.
	SortNewest Sort = iota
	// SortIDDesc orders by store ID descending only.
	SortIDDesc
)

// Filter narrows opportunity listings. Zero fields do not filter.
type Filter struct {
	Status             *Status
	OrganizerID        string
	RegisteredPlayerID string
	JoinedPlayerID     string
	// EventAfter and EventBefore are strict bounds on EventDate; records without one never match.
	EventAfter  *time.Time
	EventBefore *time.Time
}

// WithStatus returns a copy of f narrowed to s.
func (f Filter) WithStatus(s Status) Filter {
	f.Status = &s
	return f
}
