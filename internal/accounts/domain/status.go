// Package domain provides core business rules for the accounts bounded
// context: the lead/client lifecycle state machine, role-derived record
// scoping, and the fixed team rosters.
package domain

import (
	"fmt"

	"casedesk_backend/platform/apperr"
)

// Actor name recorded on history and audit entries for automatic
// transitions triggered by the scheduler or by field-level side effects.
const SystemActor = "system"

const (
	StatusIntake            = "INTAKE"
	StatusSendProposal      = "SEND_PROPOSAL"
	StatusWaitingApproval   = "WAITING_APPROVAL"
	StatusSendContract      = "SEND_CONTRACT"
	StatusWaitingAcceptance = "WAITING_ACCEPTANCE"
	StatusDiscussingQ       = "DISCUSSING_Q"
	StatusClient            = "CLIENT"
	StatusOnHold            = "ON_HOLD"
	StatusArchived          = "ARCHIVED"
)

var knownStatuses = map[string]struct{}{
	StatusIntake:            {},
	StatusSendProposal:      {},
	StatusWaitingApproval:   {},
	StatusSendContract:      {},
	StatusWaitingAcceptance: {},
	StatusDiscussingQ:       {},
	StatusClient:            {},
	StatusOnHold:            {},
	StatusArchived:          {},
}

// IsKnownStatus reports whether the status is part of the lifecycle
// enumeration.
func IsKnownStatus(status string) bool {
	_, ok := knownStatuses[status]
	return ok
}

// allowedTransitions is the lifecycle graph. ON_HOLD and ARCHIVED are
// reachable from every non-terminal status and ON_HOLD can resume into
// any working status, so they are handled separately in CanTransition.
var allowedTransitions = map[string][]string{
	StatusIntake:            {StatusSendProposal},
	StatusSendProposal:      {StatusWaitingApproval, StatusDiscussingQ},
	StatusWaitingApproval:   {StatusSendContract, StatusDiscussingQ},
	StatusDiscussingQ:       {StatusSendContract, StatusSendProposal},
	StatusSendContract:      {StatusWaitingAcceptance},
	StatusWaitingAcceptance: {StatusClient},
}

// CanTransition reports whether moving from one status to another is legal.
// Same-status "transitions" are allowed as no-ops at the service layer and
// are not routed through here.
func CanTransition(from, to string) bool {
	if !IsKnownStatus(from) || !IsKnownStatus(to) {
		return false
	}
	if from == StatusArchived {
		return false
	}
	if to == StatusOnHold || to == StatusArchived {
		return true
	}
	if from == StatusOnHold {
		return to != StatusClient // resuming goes back into the working pipeline
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition checks a requested status change including the
// assignee requirement on confirmation. It returns nil when the change is
// legal and an IllegalTransition error naming the violated rule otherwise.
func ValidateTransition(from, to, assignedTo string) error {
	if !IsKnownStatus(to) {
		return apperr.IllegalTransition(fmt.Sprintf("unknown status %q", to))
	}
	if !CanTransition(from, to) {
		return apperr.IllegalTransition(fmt.Sprintf("cannot change status from %s to %s", from, to))
	}
	if to == StatusClient && assignedTo == "" {
		return apperr.IllegalTransition("confirming a client requires an assignee")
	}
	return nil
}

// IsConfirmed reports whether a status places the account in the
// confirmed-client store. Exactly one status does; every other status
// belongs to the lead store.
func IsConfirmed(status string) bool {
	return status == StatusClient
}
