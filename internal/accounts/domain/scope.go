package domain

import (
	"fmt"

	"casedesk_backend/platform/apperr"
	"casedesk_backend/platform/staffname"
)

// Scope is the role-derived visibility rule for one collection. The
// repository layer translates it into a WHERE clause; no handler ever
// checks roles against records directly.
//
// Names holds normalized (folded) assignee names: a record matches when
// its stored assignedTo folds to one of them OR when CreatedBy matches.
// Names are normalized at write time, so reads are exact comparisons.
type Scope struct {
	All       bool
	Names     []string
	CreatedBy string
	denied    bool
}

// ScopeAll is the unrestricted scope.
func ScopeAll() Scope { return Scope{All: true} }

// ScopeNone matches no records. Reads against it return not-found rather
// than forbidden so record existence never leaks across roles.
func ScopeNone() Scope { return Scope{denied: true} }

// Denied reports whether the scope excludes the entire collection.
func (s Scope) Denied() bool { return s.denied }

// Identity is the caller information scope resolution needs. The httpkit
// middleware satisfies it.
type Identity interface {
	StaffName() string
	Role() string
}

// ResolveLeadScope returns the visibility rule for the lead store.
func ResolveLeadScope(id Identity) Scope {
	name := staffname.Fold(id.StaffName())
	switch ParseRole(id.Role()) {
	case RoleAdmin:
		return ScopeAll()
	case RoleManager:
		return Scope{Names: foldAll(SubordinatesOf(id.StaffName())), CreatedBy: name}
	case RoleIntake:
		// Intake workers see their own leads and their own creations,
		// never anyone else's.
		return Scope{Names: []string{name}, CreatedBy: name}
	case RoleConsultant:
		// Consultants work confirmed clients only.
		return ScopeNone()
	default:
		return Scope{Names: []string{name}}
	}
}

// ResolveClientScope returns the visibility rule for the confirmed-client
// store.
func ResolveClientScope(id Identity) Scope {
	name := staffname.Fold(id.StaffName())
	switch ParseRole(id.Role()) {
	case RoleAdmin:
		return ScopeAll()
	case RoleManager:
		return Scope{Names: foldAll(SubordinatesOf(id.StaffName())), CreatedBy: name}
	case RoleConsultant:
		return Scope{Names: []string{name}}
	case RoleIntake:
		// Leads leave the intake team's view once confirmed.
		return ScopeNone()
	default:
		return Scope{Names: []string{name}}
	}
}

// ResolveCaseScope returns the visibility rule for cases of the given type,
// which follows the scope of the store owning the parent.
func ResolveCaseScope(id Identity, caseType string) Scope {
	if caseType == CaseTypeClient {
		return ResolveClientScope(id)
	}
	return ResolveLeadScope(id)
}

// ValidateCaseAssignment enforces the team boundary: the proposed assignee
// must belong to the fixed roster for the case type. Runs on creation and
// on every reassignment.
func ValidateCaseAssignment(caseType, assignee string) error {
	if RosterFor(caseType) == nil {
		return apperr.Validation(fmt.Sprintf("unknown case type %q", caseType))
	}
	if !InRoster(caseType, assignee) {
		return apperr.Validation(fmt.Sprintf("%s is not on the %s team roster", staffname.Normalize(assignee), caseType))
	}
	return nil
}

func foldAll(names []string) []string {
	folded := make([]string, 0, len(names))
	for _, n := range names {
		folded = append(folded, staffname.Fold(n))
	}
	return folded
}
