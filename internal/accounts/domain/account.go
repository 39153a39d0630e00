package domain

import "time"

// Store tags which physical store currently holds an account. One logical
// entity, two locations: confirmed clients live apart from leads and the
// two sets are disjoint.
type Store string

const (
	StoreLead   Store = "lead"
	StoreClient Store = "client"
)

// StoreFor returns the store a status belongs to.
func StoreFor(status string) Store {
	if IsConfirmed(status) {
		return StoreClient
	}
	return StoreLead
}

// CaseTypeFor returns the case type (and therefore the team roster) that
// work under a store carries.
func CaseTypeFor(store Store) string {
	if store == StoreClient {
		return CaseTypeClient
	}
	return CaseTypeCustomer
}

// Account is the lead/client aggregate. The same shape is persisted in
// both stores; Store tags which one a loaded record came from.
type Account struct {
	ID          string    `json:"id"`
	Store       Store     `json:"-"`
	ContactName string    `json:"contactName"`
	Company     string    `json:"company,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Status      string    `json:"status"`
	AssignedTo  string    `json:"assignedTo,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	Version     int       `json:"version"`
	Notes       string    `json:"notes,omitempty"`

	// Fee components in cents. Summed into a draft invoice on confirmation.
	RetainerFeeCents  int64 `json:"retainerFeeCents,omitempty"`
	HourlyBudgetCents int64 `json:"hourlyBudgetCents,omitempty"`
	FilingFeeCents    int64 `json:"filingFeeCents,omitempty"`

	// Set once by the external document workflow; first set triggers an
	// automatic status advance.
	ProposalSentAt *time.Time `json:"proposalSentAt,omitempty"`
	ContractSentAt *time.Time `json:"contractSentAt,omitempty"`

	// Follow-up date for ON_HOLD accounts.
	FollowUpAt *time.Time `json:"followUpAt,omitempty"`

	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Tracker Tracker `json:"-"`
}

// HasFees reports whether any itemized fee component is present.
func (a *Account) HasFees() bool {
	return a.RetainerFeeCents > 0 || a.HourlyBudgetCents > 0 || a.FilingFeeCents > 0
}

// TotalFeeCents sums the itemized fee components.
func (a *Account) TotalFeeCents() int64 {
	return a.RetainerFeeCents + a.HourlyBudgetCents + a.FilingFeeCents
}

// StatusHistoryEntry is one append-only lifecycle record.
type StatusHistoryEntry struct {
	ID        int64     `json:"-"`
	AccountID string    `json:"accountId"`
	Status    string    `json:"status"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// Tracker is the per-account escalation state the scheduler maintains.
// It is reset whenever the tracked status or its change timestamp differs
// from the account's current values.
type Tracker struct {
	TrackedStatus          string     `json:"trackedStatus"`
	TrackedStatusChangedAt time.Time  `json:"trackedStatusChangedAt"`
	FollowupCount          int        `json:"followupCount"`
	LastFollowupAt         *time.Time `json:"lastFollowupAt,omitempty"`
	LastRespondAt          *time.Time `json:"lastRespondAt,omitempty"`
	OnHoldNotifiedFor      *time.Time `json:"onHoldNotifiedFor,omitempty"`
}

// Reset clears all escalation counters for a new status observation.
func (t *Tracker) Reset(status string, changedAt time.Time) {
	t.TrackedStatus = status
	t.TrackedStatusChangedAt = changedAt
	t.FollowupCount = 0
	t.LastFollowupAt = nil
	t.LastRespondAt = nil
	t.OnHoldNotifiedFor = nil
}

// ChatMessage belongs to an account and is archived separately from the
// entity snapshot.
type ChatMessage struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Invoice is a billing record for a confirmed client. A draft invoice is
// synthesized from the fee components during confirmation.
type Invoice struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"accountId"`
	Status      string    `json:"status"`
	AmountCents int64     `json:"amountCents"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

const (
	InvoiceStatusDraft = "draft"
	InvoiceStatusSent  = "sent"
	InvoiceStatusPaid  = "paid"
)
