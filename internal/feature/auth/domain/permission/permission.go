// Package permission holds the operation to allowed-roles table checked by the authorization guard.
package permission

import "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"

// Operation names one guarded API action.
type Operation string

const (
	// auth
	OpLogout Operation = "auth.logout"
	OpMe     Operation = "auth.me"

	// opportunities
	OpListOpportunities  Operation = "opportunities.list"
	OpCountOpportunities Operation = "opportunities.count"
	OpGetOpportunity     Operation = "opportunities.get"
	OpCreateOpportunity  Operation = "opportunities.create"
	OpSetStatus          Operation = "opportunities.set_status"

	// organizers
	OpOrganizerOpportunities Operation = "organizers.opportunities"
	OpOrganizerDashboard     Operation = "organizers.dashboard"

	// players
	OpPlayerRegistered Operation = "players.registered"
	OpPlayerJoined     Operation = "players.joined"
	OpPlayerRegister   Operation = "players.register"
	OpPlayerJoin       Operation = "players.join"
	OpPlayerDashboard  Operation = "players.dashboard"

	// users
	OpListUsers        Operation = "users.list"
	OpCountUsersByRole Operation = "users.count_by_role"
	OpGetUser          Operation = "users.get"
	OpDeleteUser       Operation = "users.delete"
)

var (
	adminOnly     = []identity.Role{identity.RoleAdmin}
	organizerOnly = []identity.Role{identity.RoleOrganizer}
	playerOnly    = []identity.Role{identity.RolePlayer}
	everyone      = []identity.Role{identity.RoleAdmin, identity.RoleOrganizer, identity.RolePlayer}
)

// table maps each operation to its allowed roles. An empty set admits any authenticated user.
var table = map[Operation][]identity.Role{
	OpLogout: nil,
	OpMe:     nil,

	OpListOpportunities:  everyone,
	OpCountOpportunities: adminOnly,
	OpGetOpportunity:     everyone,
	OpCreateOpportunity:  organizerOnly,
	OpSetStatus:          adminOnly,

	OpOrganizerOpportunities: {identity.RoleAdmin, identity.RoleOrganizer},
	OpOrganizerDashboard:     {identity.RoleAdmin, identity.RoleOrganizer},

	OpPlayerRegistered: {identity.RoleAdmin, identity.RolePlayer},
	OpPlayerJoined:     {identity.RoleAdmin, identity.RolePlayer},
	OpPlayerRegister:   playerOnly,
	OpPlayerJoin:       playerOnly,
	OpPlayerDashboard:  {identity.RoleAdmin, identity.RolePlayer},

	OpListUsers:        adminOnly,
	OpCountUsersByRole: adminOnly,
	OpGetUser:          adminOnly,
	OpDeleteUser:       adminOnly,
}

// Known reports whether op is present in the table.
func Known(op Operation) bool {
	_, ok := table[op]
	return ok
}

// RolesFor returns a copy of the roles allowed to perform op.
func RolesFor(op Operation) []identity.Role {
	roles := table[op]
	out := make([]identity.Role, len(roles))
	copy(out, roles)
	return out
}

// Allowed reports whether role may perform op. Unknown operations are denied.
func Allowed(op Operation, role identity.Role) bool {
	roles, ok := table[op]
	if !ok || !role.Valid() {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
