// Package identity defines the closed role set and the per-request principal
// that the authorization guard hands to downstream use cases.
package identity

import (
	"context"
	"strings"
	"time"
)

// Role is one of the three account roles.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
	RolePlayer    Role = "player"
)

// Roles lists every valid role in a stable order.
var Roles = []Role{RoleAdmin, RoleOrganizer, RolePlayer}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleOrganizer, RolePlayer:
		return r, true
	}
	return "", false
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

func (r Role) String() string { return string(r) }

// Principal is the resolved identity of the caller for one request.
type Principal struct {
	UserID  string
	Name    string
	Email   string
	Role    Role

	// TokenID and ExpiresAt identify the credential the request presented.
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
