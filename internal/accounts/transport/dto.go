// Package transport defines request and response shapes for the accounts
// HTTP surface.
package transport

import (
	"time"

	"casedesk_backend/internal/accounts/domain"
)

// CreateAccountRequest creates a new lead. Accounts always start in the
// lead store; confirmation is a separate transition.
type CreateAccountRequest struct {
	ContactName       string `json:"contactName" validate:"required,min=2,max=200"`
	Company           string `json:"company" validate:"max=200"`
	Email             string `json:"email" validate:"omitempty,email"`
	Phone             string `json:"phone" validate:"max=32"`
	AssignedTo        string `json:"assignedTo" validate:"max=100"`
	Notes             string `json:"notes" validate:"max=10000"`
	RetainerFeeCents  int64  `json:"retainerFeeCents" validate:"min=0"`
	HourlyBudgetCents int64  `json:"hourlyBudgetCents" validate:"min=0"`
	FilingFeeCents    int64  `json:"filingFeeCents" validate:"min=0"`
}

// UpdateAccountRequest mutates an account. Version carries the version the
// caller last observed; nil fields are left unchanged. A Status value that
// differs from the stored one requests a lifecycle transition, including
// confirmation and demotion.
type UpdateAccountRequest struct {
	Version           int        `json:"version" validate:"min=1"`
	ContactName       *string    `json:"contactName" validate:"omitempty,min=2,max=200"`
	Company           *string    `json:"company" validate:"omitempty,max=200"`
	Email             *string    `json:"email" validate:"omitempty,email"`
	Phone             *string    `json:"phone" validate:"omitempty,max=32"`
	Status            *string    `json:"status"`
	AssignedTo        *string    `json:"assignedTo" validate:"omitempty,max=100"`
	Notes             *string    `json:"notes" validate:"omitempty,max=10000"`
	RetainerFeeCents  *int64     `json:"retainerFeeCents" validate:"omitempty,min=0"`
	HourlyBudgetCents *int64     `json:"hourlyBudgetCents" validate:"omitempty,min=0"`
	FilingFeeCents    *int64     `json:"filingFeeCents" validate:"omitempty,min=0"`
	ProposalSentAt    *time.Time `json:"proposalSentAt"`
	ContractSentAt    *time.Time `json:"contractSentAt"`
	FollowUpAt        *time.Time `json:"followUpAt"`
}

// ListAccountsRequest filters a scoped account listing.
type ListAccountsRequest struct {
	Status     string `form:"status"`
	AssignedTo string `form:"assignedTo"`
	Search     string `form:"search" validate:"max=200"`
	Limit      int    `form:"limit" validate:"min=0,max=200"`
	Offset     int    `form:"offset" validate:"min=0"`
}

// AddChatMessageRequest appends one message to an account's chat thread.
type AddChatMessageRequest struct {
	Body string `json:"body" validate:"required,max=10000"`
}

// CreateInvoiceRequest adds a billing record to a confirmed client.
type CreateInvoiceRequest struct {
	AmountCents int64  `json:"amountCents" validate:"required,min=1"`
	Description string `json:"description" validate:"required,max=500"`
}

// AccountResponse is the wire shape of an account.
type AccountResponse struct {
	ID                string     `json:"id"`
	Store             string     `json:"store"`
	ContactName       string     `json:"contactName"`
	Company           string     `json:"company,omitempty"`
	Email             string     `json:"email,omitempty"`
	Phone             string     `json:"phone,omitempty"`
	Status            string     `json:"status"`
	AssignedTo        string     `json:"assignedTo,omitempty"`
	CreatedBy         string     `json:"createdBy"`
	Version           int        `json:"version"`
	Notes             string     `json:"notes,omitempty"`
	RetainerFeeCents  int64      `json:"retainerFeeCents,omitempty"`
	HourlyBudgetCents int64      `json:"hourlyBudgetCents,omitempty"`
	FilingFeeCents    int64      `json:"filingFeeCents,omitempty"`
	ProposalSentAt    *time.Time `json:"proposalSentAt,omitempty"`
	ContractSentAt    *time.Time `json:"contractSentAt,omitempty"`
	FollowUpAt        *time.Time `json:"followUpAt,omitempty"`
	ConfirmedAt       *time.Time `json:"confirmedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// AccountDetailResponse is an account with its lifecycle history.
type AccountDetailResponse struct {
	AccountResponse
	StatusHistory []StatusHistoryEntry `json:"statusHistory"`
}

// StatusHistoryEntry is one lifecycle record on the wire.
type StatusHistoryEntry struct {
	Status    string    `json:"status"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// ChatMessageResponse is one chat message on the wire.
type ChatMessageResponse struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// InvoiceResponse is one invoice on the wire.
type InvoiceResponse struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"accountId"`
	Status      string    `json:"status"`
	AmountCents int64     `json:"amountCents"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToAccountResponse maps a domain account to its wire shape.
func ToAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		ID:                a.ID,
		Store:             string(a.Store),
		ContactName:       a.ContactName,
		Company:           a.Company,
		Email:             a.Email,
		Phone:             a.Phone,
		Status:            a.Status,
		AssignedTo:        a.AssignedTo,
		CreatedBy:         a.CreatedBy,
		Version:           a.Version,
		Notes:             a.Notes,
		RetainerFeeCents:  a.RetainerFeeCents,
		HourlyBudgetCents: a.HourlyBudgetCents,
		FilingFeeCents:    a.FilingFeeCents,
		ProposalSentAt:    a.ProposalSentAt,
		ContractSentAt:    a.ContractSentAt,
		FollowUpAt:        a.FollowUpAt,
		ConfirmedAt:       a.ConfirmedAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// ToAccountResponses maps a slice of accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, ToAccountResponse(a))
	}
	return out
}

// ToHistoryEntries maps lifecycle history.
func ToHistoryEntries(entries []domain.StatusHistoryEntry) []StatusHistoryEntry {
	out := make([]StatusHistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, StatusHistoryEntry{Status: e.Status, ChangedBy: e.ChangedBy, ChangedAt: e.ChangedAt})
	}
	return out
}

// ToChatMessageResponses maps a chat thread.
func ToChatMessageResponses(messages []domain.ChatMessage) []ChatMessageResponse {
	out := make([]ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, ChatMessageResponse{ID: m.ID, Author: m.Author, Body: m.Body, CreatedAt: m.CreatedAt})
	}
	return out
}

// ToInvoiceResponses maps invoices.
func ToInvoiceResponses(invoices []domain.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, InvoiceResponse{
			ID: inv.ID, AccountID: inv.AccountID, Status: inv.Status,
			AmountCents: inv.AmountCents, Description: inv.Description,
			CreatedBy: inv.CreatedBy, CreatedAt: inv.CreatedAt,
		})
	}
	return out
}
