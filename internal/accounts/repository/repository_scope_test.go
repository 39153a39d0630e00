package repository

import (
	"strings"
	"testing"

	"casedesk_backend/internal/accounts/domain"
)

func TestScopeClauseUnrestricted(t *testing.T) {
	clause, args := scopeClause(domain.ScopeAll(), nil)
	if clause != "TRUE" || len(args) != 0 {
		t.Fatalf("unrestricted scope should render TRUE with no args, got %q %v", clause, args)
	}
}

func TestScopeClauseDeniedMatchesNothing(t *testing.T) {
	clause, args := scopeClause(domain.ScopeNone(), nil)
	if clause != "FALSE" || len(args) != 0 {
		t.Fatalf("denied scope should render FALSE with no args, got %q %v", clause, args)
	}
}

func TestScopeClauseNamesAndCreator(t *testing.T) {
	scope := domain.Scope{Names: []string{"thomas keller", "sabine ortner"}, CreatedBy: "julia brandt"}
	clause, args := scopeClause(scope, nil)

	if !strings.Contains(clause, "LOWER(assigned_to) = ANY($1)") {
		t.Errorf("clause missing assignee condition: %q", clause)
	}
	if !strings.Contains(clause, "LOWER(created_by) = $2") {
		t.Errorf("clause missing creator condition: %q", clause)
	}
	if !strings.Contains(clause, " OR ") {
		t.Errorf("assignee and creator rules must be alternatives: %q", clause)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %v", args)
	}
}

func TestScopeClausePlaceholdersComposeWithPriorArgs(t *testing.T) {
	scope := domain.Scope{Names: []string{"eva steiner"}}
	clause, args := scopeClause(scope, []interface{}{"some-id"})

	if !strings.Contains(clause, "$2") {
		t.Errorf("placeholder numbering must continue after existing args: %q", clause)
	}
	if len(args) != 2 {
		t.Fatalf("expected existing arg to be preserved, got %v", args)
	}
}

func TestScopeClauseEmptyRuleSetMatchesNothing(t *testing.T) {
	clause, _ := scopeClause(domain.Scope{}, nil)
	if clause != "FALSE" {
		t.Fatalf("a scope with no rules must match nothing, got %q", clause)
	}
}
