package domain

import "testing"

func TestCanTransitionHappyPath(t *testing.T) {
	path := []string{
		StatusIntake, StatusSendProposal, StatusWaitingApproval,
		StatusSendContract, StatusWaitingAcceptance, StatusClient,
	}
	for i := 0; i < len(path)-1; i++ {
		if !CanTransition(path[i], path[i+1]) {
			t.Errorf("expected %s -> %s to be legal", path[i], path[i+1])
		}
	}
}

func TestCanTransitionRevisionLoop(t *testing.T) {
	if !CanTransition(StatusWaitingApproval, StatusDiscussingQ) {
		t.Error("WAITING_APPROVAL -> DISCUSSING_Q should be legal")
	}
	if !CanTransition(StatusSendProposal, StatusDiscussingQ) {
		t.Error("SEND_PROPOSAL -> DISCUSSING_Q should be legal")
	}
	if !CanTransition(StatusDiscussingQ, StatusSendContract) {
		t.Error("DISCUSSING_Q -> SEND_CONTRACT should be legal")
	}
}

func TestCanTransitionRejectsSkips(t *testing.T) {
	cases := [][2]string{
		{StatusIntake, StatusClient},
		{StatusIntake, StatusWaitingApproval},
		{StatusSendProposal, StatusClient},
		{StatusArchived, StatusIntake},
		{StatusOnHold, StatusClient},
	}
	for _, tc := range cases {
		if CanTransition(tc[0], tc[1]) {
			t.Errorf("expected %s -> %s to be illegal", tc[0], tc[1])
		}
	}
}

func TestOnHoldAndArchivedReachableFromWorkingStatuses(t *testing.T) {
	for _, from := range []string{StatusIntake, StatusWaitingApproval, StatusWaitingAcceptance, StatusClient} {
		if !CanTransition(from, StatusOnHold) {
			t.Errorf("expected %s -> ON_HOLD to be legal", from)
		}
		if !CanTransition(from, StatusArchived) {
			t.Errorf("expected %s -> ARCHIVED to be legal", from)
		}
	}
}

func TestValidateTransitionClientRequiresAssignee(t *testing.T) {
	if err := ValidateTransition(StatusWaitingAcceptance, StatusClient, ""); err == nil {
		t.Error("confirming without an assignee must be rejected")
	}
	if err := ValidateTransition(StatusWaitingAcceptance, StatusClient, "Anna Maier"); err != nil {
		t.Errorf("confirming with an assignee should succeed, got %v", err)
	}
}

func TestValidateTransitionUnknownStatus(t *testing.T) {
	if err := ValidateTransition(StatusIntake, "FROZEN", ""); err == nil {
		t.Error("unknown target status must be rejected")
	}
}

func TestStoreFor(t *testing.T) {
	if StoreFor(StatusClient) != StoreClient {
		t.Error("CLIENT belongs to the client store")
	}
	for _, s := range []string{StatusIntake, StatusOnHold, StatusDiscussingQ} {
		if StoreFor(s) != StoreLead {
			t.Errorf("%s belongs to the lead store", s)
		}
	}
}
