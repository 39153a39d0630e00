package service

import (
	"testing"
	"time"

	"casedesk_backend/internal/accounts/domain"
	"casedesk_backend/internal/accounts/transport"
)

func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }

func TestMergeParamsNormalizesAssigneeAtWrite(t *testing.T) {
	current := domain.Account{Status: domain.StatusIntake, Version: 3}
	req := transport.UpdateAccountRequest{Version: 3, AssignedTo: strPtr("Dr.  Anna   Maier")}

	params := mergeParams(current, req)
	if params.AssignedTo != "Anna Maier" {
		t.Errorf("assignee must be stored in canonical form, got %q", params.AssignedTo)
	}
	if params.ExpectedVersion != 3 {
		t.Errorf("expected version must carry through, got %d", params.ExpectedVersion)
	}
}

func TestMergeParamsLeavesAbsentFieldsUnchanged(t *testing.T) {
	current := domain.Account{
		ContactName: "Huber GmbH", Status: domain.StatusSendProposal,
		Notes: "initial call done", Version: 2,
	}
	params := mergeParams(current, transport.UpdateAccountRequest{Version: 2})

	if params.ContactName != "Huber GmbH" || params.Notes != "initial call done" || params.Status != domain.StatusSendProposal {
		t.Errorf("absent fields must keep current values, got %+v", params)
	}
}

func TestMergeParamsDispatchTimestampsAreSetOnce(t *testing.T) {
	first := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	current := domain.Account{Status: domain.StatusWaitingApproval, ProposalSentAt: &first}
	params := mergeParams(current, transport.UpdateAccountRequest{Version: 1, ProposalSentAt: timePtr(second)})

	if params.ProposalSentAt == nil || !params.ProposalSentAt.Equal(first) {
		t.Error("an already-set dispatch timestamp must not be overwritten")
	}

	fresh := domain.Account{Status: domain.StatusSendProposal}
	params = mergeParams(fresh, transport.UpdateAccountRequest{Version: 1, ProposalSentAt: timePtr(second)})
	if params.ProposalSentAt == nil || !params.ProposalSentAt.Equal(second) {
		t.Error("a first-time dispatch timestamp must be applied")
	}
}

func TestPendingFieldEditsIgnoresStatusOnlyChanges(t *testing.T) {
	current := domain.Account{ContactName: "Huber GmbH", Status: domain.StatusWaitingAcceptance, AssignedTo: "Anna Maier"}
	req := transport.UpdateAccountRequest{Version: 1, Status: strPtr(domain.StatusClient)}

	if pendingFieldEdits(current, mergeParams(current, req)) {
		t.Error("a pure status change must not count as a field edit")
	}

	req.Notes = strPtr("fee agreed")
	if !pendingFieldEdits(current, mergeParams(current, req)) {
		t.Error("a notes change must count as a field edit")
	}
}
