package domain

import "fmt"

// Role is the caller's access role. Using a dedicated type keeps role
// dispatch in one place instead of string comparisons scattered across
// handlers.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleIntake     Role = "intake"
	RoleConsultant Role = "consultant"
	RoleStaff      Role = "staff"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:      {},
	RoleManager:    {},
	RoleIntake:     {},
	RoleConsultant: {},
	RoleStaff:      {},
}

// ParseRole converts a raw role string (e.g. from a JWT claim) to a Role.
// Unknown values map to RoleStaff, the most restrictive scope, rather than
// failing the request.
func ParseRole(raw string) Role {
	r := Role(raw)
	if _, ok := knownRoles[r]; ok {
		return r
	}
	return RoleStaff
}

func (r Role) String() string { return string(r) }

// CanCreateLeads reports whether the role may create new lead records.
func (r Role) CanCreateLeads() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleIntake:
		return true
	}
	return false
}

// CanMigrate reports whether the role may confirm a lead into a client or
// demote a client back to a lead.
func (r Role) CanMigrate(demotion bool) bool {
	if demotion {
		return r == RoleAdmin
	}
	return r == RoleAdmin || r == RoleManager
}

// Validate returns an error for roles outside the known set. Used when
// provisioning users, where silent coercion would hide typos.
func (r Role) Validate() error {
	if _, ok := knownRoles[r]; !ok {
		return fmt.Errorf("unknown role %q", r)
	}
	return nil
}
