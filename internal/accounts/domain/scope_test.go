package domain

import "testing"

type testIdentity struct {
	name string
	role string
}

func (t testIdentity) StaffName() string { return t.name }
func (t testIdentity) Role() string      { return t.role }

func containsName(scope Scope, name string) bool {
	for _, n := range scope.Names {
		if n == name {
			return true
		}
	}
	return false
}

func TestResolveLeadScopeAdmin(t *testing.T) {
	scope := ResolveLeadScope(testIdentity{"Anna Maier", "admin"})
	if !scope.All || scope.Denied() {
		t.Error("admin scope must be unrestricted")
	}
}

func TestResolveLeadScopeManagerSeesSubordinatesAndOwnCreations(t *testing.T) {
	scope := ResolveLeadScope(testIdentity{"Julia Brandt", "manager"})
	if scope.All {
		t.Fatal("manager scope must not be unrestricted")
	}
	if !containsName(scope, "thomas keller") || !containsName(scope, "sabine ortner") {
		t.Errorf("manager scope missing subordinates: %v", scope.Names)
	}
	if scope.CreatedBy != "julia brandt" {
		t.Errorf("manager scope must include own creations, got createdBy=%q", scope.CreatedBy)
	}
}

func TestResolveLeadScopeConsultantDenied(t *testing.T) {
	scope := ResolveLeadScope(testIdentity{"Markus Winter", "consultant"})
	if !scope.Denied() {
		t.Error("consultants must not see pre-confirmation leads")
	}
}

func TestResolveClientScopeIntakeDenied(t *testing.T) {
	scope := ResolveClientScope(testIdentity{"Thomas Keller", "intake"})
	if !scope.Denied() {
		t.Error("intake workers must not see confirmed clients")
	}
}

func TestResolveClientScopeConsultantOwnNameOnly(t *testing.T) {
	scope := ResolveClientScope(testIdentity{"Dr. Eva Steiner", "consultant"})
	if scope.All || scope.Denied() {
		t.Fatal("consultant client scope must be name-restricted")
	}
	if !containsName(scope, "eva steiner") {
		t.Errorf("consultant scope must match their normalized name, got %v", scope.Names)
	}
	if scope.CreatedBy != "" {
		t.Error("consultant scope must not include a createdBy rule")
	}
}

func TestResolveScopeUnknownRoleFallsBackToOwnName(t *testing.T) {
	scope := ResolveLeadScope(testIdentity{"Sabine Ortner", "superuser"})
	if scope.All || scope.Denied() {
		t.Fatal("unknown roles get the most restrictive non-denied scope")
	}
	if !containsName(scope, "sabine ortner") || scope.CreatedBy != "" {
		t.Errorf("unexpected scope for unknown role: %+v", scope)
	}
}

func TestValidateCaseAssignmentTeamBoundary(t *testing.T) {
	// An intake-roster name may take customer cases but not client cases.
	if err := ValidateCaseAssignment(CaseTypeCustomer, "Thomas Keller"); err != nil {
		t.Errorf("intake roster member must be assignable to customer cases: %v", err)
	}
	if err := ValidateCaseAssignment(CaseTypeClient, "Thomas Keller"); err == nil {
		t.Error("intake roster member must not be assignable to client cases")
	}
	if err := ValidateCaseAssignment(CaseTypeClient, "Dr. Anna Maier"); err != nil {
		t.Errorf("titled form of a client lawyer must pass: %v", err)
	}
	if err := ValidateCaseAssignment("internal", "Anna Maier"); err == nil {
		t.Error("unknown case type must be rejected")
	}
}
