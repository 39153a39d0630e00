// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"casedesk_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Account Lifecycle Events
// =============================================================================

// StatusChanged is published on every explicit or automatic status change.
type StatusChanged struct {
	BaseEvent
	AccountID  string `json:"accountId"`
	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`
	Actor      string `json:"actor"`
	AssignedTo string `json:"assignedTo,omitempty"`
}

func (e StatusChanged) EventName() string { return "accounts.status.changed" }

// ProposalDispatched is published when the proposal-sent timestamp is set
// for the first time by the external document workflow.
type ProposalDispatched struct {
	BaseEvent
	AccountID   string `json:"accountId"`
	ContactName string `json:"contactName"`
	Email       string `json:"email,omitempty"`
	AssignedTo  string `json:"assignedTo,omitempty"`
}

func (e ProposalDispatched) EventName() string { return "accounts.proposal.dispatched" }

// ContractDispatched is published when the contract-sent timestamp is set
// for the first time.
type ContractDispatched struct {
	BaseEvent
	AccountID   string `json:"accountId"`
	ContactName string `json:"contactName"`
	Email       string `json:"email,omitempty"`
	AssignedTo  string `json:"assignedTo,omitempty"`
}

func (e ContractDispatched) EventName() string { return "accounts.contract.dispatched" }

// AccountConfirmed is published after a lead has been migrated to the
// confirmed-client store.
type AccountConfirmed struct {
	BaseEvent
	AccountID   string `json:"accountId"`
	ContactName string `json:"contactName"`
	AssignedTo  string `json:"assignedTo"`
	Actor       string `json:"actor"`
}

func (e AccountConfirmed) EventName() string { return "accounts.confirmed" }

// AccountDemoted is published after a confirmed client has been migrated
// back to the lead store.
type AccountDemoted struct {
	BaseEvent
	AccountID string `json:"accountId"`
	ToStatus  string `json:"toStatus"`
	Actor     string `json:"actor"`
}

func (e AccountDemoted) EventName() string { return "accounts.demoted" }

// LeadArchived is published after a lead snapshot has been written and the
// live copies deleted, manually or by the escalation sweep.
type LeadArchived struct {
	BaseEvent
	AccountID   string `json:"accountId"`
	ContactName string `json:"contactName"`
	AssignedTo  string `json:"assignedTo,omitempty"`
	Automatic   bool   `json:"automatic"`
	Actor       string `json:"actor"`
}

func (e LeadArchived) EventName() string { return "accounts.lead.archived" }

// =============================================================================
// Escalation Events
// =============================================================================

// EscalationRaised is published when the escalation engine emits a new
// follow or respond notification for a lead.
type EscalationRaised struct {
	BaseEvent
	AccountID   string `json:"accountId"`
	Kind        string `json:"kind"` // "follow" or "respond"
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	AssignedTo  string `json:"assignedTo,omitempty"`
	ContactName string `json:"contactName"`
}

func (e EscalationRaised) EventName() string { return "escalation.notification.raised" }
