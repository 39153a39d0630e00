package domain

import "casedesk_backend/platform/staffname"

// Fixed staff rosters. These are business constants, not configuration:
// the intake team handles pre-confirmation (customer) cases, the client
// lawyers handle confirmed-client cases. Assignment outside the roster for
// a case type is rejected at both creation and reassignment.

// CaseType distinguishes pre-confirmation work from confirmed-client work.
// A case's type must always agree with the store that owns its parent.
const (
	CaseTypeCustomer = "customer"
	CaseTypeClient   = "client"
)

var intakeTeam = []string{
	"Julia Brandt",
	"Thomas Keller",
	"Sabine Ortner",
}

var clientLawyers = []string{
	"Anna Maier",
	"Markus Winter",
	"Eva Steiner",
}

// managerSubordinates maps a manager's normalized name to the staff whose
// work they oversee.
var managerSubordinates = map[string][]string{
	staffname.Fold("Julia Brandt"): {"Thomas Keller", "Sabine Ortner"},
	staffname.Fold("Anna Maier"):   {"Markus Winter", "Eva Steiner"},
}

// RosterFor returns the staff roster permitted for a case type, or nil for
// an unknown type.
func RosterFor(caseType string) []string {
	switch caseType {
	case CaseTypeCustomer:
		return intakeTeam
	case CaseTypeClient:
		return clientLawyers
	}
	return nil
}

// InRoster reports whether the assignee belongs to the roster for the case
// type, comparing normalized names.
func InRoster(caseType, assignee string) bool {
	for _, member := range RosterFor(caseType) {
		if staffname.Equal(member, assignee) {
			return true
		}
	}
	return false
}

// SubordinatesOf returns the staff a manager oversees, or nil when the
// name has no subordinate roster.
func SubordinatesOf(managerName string) []string {
	return managerSubordinates[staffname.Fold(managerName)]
}
