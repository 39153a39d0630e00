// Package domain provides core business rules for the cases bounded
// context.
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	StateOpen           = "OPEN"
	StateInProgress     = "IN_PROGRESS"
	StateAwaitingClient = "AWAITING_CLIENT"
	StateReview         = "REVIEW"
	StateClosed         = "CLOSED"
)

var knownStates = map[string]struct{}{
	StateOpen:           {},
	StateInProgress:     {},
	StateAwaitingClient: {},
	StateReview:         {},
	StateClosed:         {},
}

// IsKnownState reports whether a case state is part of the enumeration.
func IsKnownState(state string) bool {
	_, ok := knownStates[state]
	return ok
}

// Case is a unit of work belonging to exactly one account. CaseType always
// agrees with the store owning the parent: customer cases for leads,
// client cases for confirmed clients.
type Case struct {
	ID              uuid.UUID `json:"id"`
	AccountID       string    `json:"accountId"`
	CaseType        string    `json:"caseType"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	State           string    `json:"state"`
	AssignedTo      string    `json:"assignedTo"`
	CreatedBy       string    `json:"createdBy"`
	Version         int       `json:"version"`
	LastStateChange time.Time `json:"lastStateChange"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// HistoryEntry is one append-only case state record.
type HistoryEntry struct {
	ID        int64     `json:"-"`
	CaseID    uuid.UUID `json:"caseId"`
	State     string    `json:"state"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// Note is a free-text annotation on a case.
type Note struct {
	ID        uuid.UUID `json:"id"`
	CaseID    uuid.UUID `json:"caseId"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task is an actionable item on a case.
type Task struct {
	ID        uuid.UUID  `json:"id"`
	CaseID    uuid.UUID  `json:"caseId"`
	Title     string     `json:"title"`
	Done      bool       `json:"done"`
	DueAt     *time.Time `json:"dueAt,omitempty"`
	CreatedBy string     `json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
