// Package transport defines request and response shapes for the cases
// HTTP surface.
package transport

import (
	"time"

	"casedesk_backend/internal/cases/domain"
)

// CreateCaseRequest opens a new case under an account. The case type is
// derived from the store owning the account, never supplied by the caller.
type CreateCaseRequest struct {
	AccountID   string `json:"accountId" validate:"required"`
	Title       string `json:"title" validate:"required,min=2,max=200"`
	Description string `json:"description" validate:"max=10000"`
	AssignedTo  string `json:"assignedTo" validate:"required,max=100"`
}

// UpdateCaseRequest mutates a case under its observed version.
type UpdateCaseRequest struct {
	Version     int     `json:"version" validate:"min=1"`
	Title       *string `json:"title" validate:"omitempty,min=2,max=200"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	State       *string `json:"state"`
	AssignedTo  *string `json:"assignedTo" validate:"omitempty,max=100"`
}

// ListCasesRequest filters a scoped case listing.
type ListCasesRequest struct {
	AccountID  string `form:"accountId"`
	CaseType   string `form:"caseType"`
	State      string `form:"state"`
	AssignedTo string `form:"assignedTo"`
	Limit      int    `form:"limit" validate:"min=0,max=200"`
	Offset     int    `form:"offset" validate:"min=0"`
}

// AddNoteRequest appends a note to a case.
type AddNoteRequest struct {
	Body string `json:"body" validate:"required,max=10000"`
}

// AddTaskRequest creates a task on a case.
type AddTaskRequest struct {
	Title string     `json:"title" validate:"required,max=200"`
	DueAt *time.Time `json:"dueAt"`
}

// SetTaskDoneRequest toggles a task's completion.
type SetTaskDoneRequest struct {
	Done bool `json:"done"`
}

// CaseResponse is the wire shape of a case.
type CaseResponse struct {
	ID              string    `json:"id"`
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

// CaseDetailResponse is a case with its state history.
type CaseDetailResponse struct {
	CaseResponse
	History []HistoryEntry `json:"history"`
}

// HistoryEntry is one case state record on the wire.
type HistoryEntry struct {
	State     string    `json:"state"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// NoteResponse is one note on the wire.
type NoteResponse struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// TaskResponse is one task on the wire.
type TaskResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Done      bool       `json:"done"`
	DueAt     *time.Time `json:"dueAt,omitempty"`
	CreatedBy string     `json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ToCaseResponse maps a domain case to its wire shape.
func ToCaseResponse(c domain.Case) CaseResponse {
	return CaseResponse{
		ID:              c.ID.String(),
		AccountID:       c.AccountID,
		CaseType:        c.CaseType,
		Title:           c.Title,
		Description:     c.Description,
		State:           c.State,
		AssignedTo:      c.AssignedTo,
		CreatedBy:       c.CreatedBy,
		Version:         c.Version,
		LastStateChange: c.LastStateChange,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// ToCaseResponses maps a slice of cases.
func ToCaseResponses(cases []domain.Case) []CaseResponse {
	out := make([]CaseResponse, 0, len(cases))
	for _, c := range cases {
		out = append(out, ToCaseResponse(c))
	}
	return out
}

// ToHistoryEntries maps case history.
func ToHistoryEntries(entries []domain.HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntry{State: e.State, ChangedBy: e.ChangedBy, ChangedAt: e.ChangedAt})
	}
	return out
}

// ToNoteResponses maps notes.
func ToNoteResponses(notes []domain.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, NoteResponse{ID: n.ID.String(), Author: n.Author, Body: n.Body, CreatedAt: n.CreatedAt})
	}
	return out
}

// ToTaskResponses maps tasks.
func ToTaskResponses(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskResponse{
			ID: t.ID.String(), Title: t.Title, Done: t.Done, DueAt: t.DueAt,
			CreatedBy: t.CreatedBy, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
		})
	}
	return out
}
