// Package repository persists the lead and confirmed-client stores. Both
// stores share one row shape; every read is filtered through the caller's
// role-derived scope and every update is guarded by the record version.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"casedesk_backend/internal/accounts/domain"
)

var (
	ErrNotFound        = errors.New("account not found")
	ErrVersionConflict = errors.New("stale version")
	ErrAlreadyExists   = errors.New("account already exists")
)

const (
	tableLeads   = "leads"
	tableClients = "clients"
)

// accountColumns is the shared column list of the leads and clients tables.
// Keeping the two tables identical lets the migration move rows with one
// INSERT ... SELECT.
const accountColumns = `id, contact_name, company, email, phone, status, assigned_to, created_by,
	version, notes, retainer_fee_cents, hourly_budget_cents, filing_fee_cents,
	proposal_sent_at, contract_sent_at, follow_up_at, confirmed_at, created_at, updated_at,
	tracked_status, tracked_status_changed_at, followup_count, last_followup_at, last_respond_at, on_hold_notified_for`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func tableFor(store domain.Store) string {
	if store == domain.StoreClient {
		return tableClients
	}
	return tableLeads
}

// scopeClause renders a Scope as a WHERE fragment. Arguments are appended
// to args and placeholders numbered from its current length, so the clause
// composes with other conditions.
func scopeClause(scope domain.Scope, args []interface{}) (string, []interface{}) {
	if scope.Denied() {
		return "FALSE", args
	}
	if scope.All {
		return "TRUE", args
	}

	var parts []string
	if len(scope.Names) > 0 {
		args = append(args, scope.Names)
		parts = append(parts, fmt.Sprintf("LOWER(assigned_to) = ANY($%d)", len(args)))
	}
	if scope.CreatedBy != "" {
		args = append(args, scope.CreatedBy)
		parts = append(parts, fmt.Sprintf("LOWER(created_by) = $%d", len(args)))
	}
	if len(parts) == 0 {
		return "FALSE", args
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func scanAccount(row pgx.Row, store domain.Store) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID, &a.ContactName, &a.Company, &a.Email, &a.Phone, &a.Status, &a.AssignedTo, &a.CreatedBy,
		&a.Version, &a.Notes, &a.RetainerFeeCents, &a.HourlyBudgetCents, &a.FilingFeeCents,
		&a.ProposalSentAt, &a.ContractSentAt, &a.FollowUpAt, &a.ConfirmedAt, &a.CreatedAt, &a.UpdatedAt,
		&a.Tracker.TrackedStatus, &a.Tracker.TrackedStatusChangedAt, &a.Tracker.FollowupCount,
		&a.Tracker.LastFollowupAt, &a.Tracker.LastRespondAt, &a.Tracker.OnHoldNotifiedFor,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, ErrNotFound
	}
	if err != nil {
		return domain.Account{}, err
	}
	a.Store = store
	return a, nil
}

// Create inserts a new account into the store its status belongs to.
func (r *Repository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	table := tableFor(domain.StoreFor(account.Status))
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, contact_name, company, email, phone, status, assigned_to, created_by,
			version, notes, retainer_fee_cents, hourly_budget_cents, filing_fee_cents,
			proposal_sent_at, contract_sent_at, follow_up_at, confirmed_at,
			tracked_status, tracked_status_changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, now())
		RETURNING `+accountColumns, table),
		account.ID, account.ContactName, account.Company, account.Email, account.Phone,
		account.Status, account.AssignedTo, account.CreatedBy,
		account.Version, account.Notes,
		account.RetainerFeeCents, account.HourlyBudgetCents, account.FilingFeeCents,
		account.ProposalSentAt, account.ContractSentAt, account.FollowUpAt, account.ConfirmedAt,
		account.Status,
	)
	return scanAccount(row, domain.StoreFor(account.Status))
}

// GetByID loads an account from one store, restricted by the caller's
// scope. A record outside scope reads as not found.
func (r *Repository) GetByID(ctx context.Context, store domain.Store, id string, scope domain.Scope) (domain.Account, error) {
	args := []interface{}{id}
	clause, args := scopeClause(scope, args)
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1 AND %s
	`, accountColumns, tableFor(store), clause), args...)
	return scanAccount(row, store)
}

// ListParams narrows a scoped listing.
type ListParams struct {
	Status     string
	AssignedTo string
	Search     string
	Limit      int
	Offset     int
}

// List returns accounts from one store visible to the caller's scope,
// newest first.
func (r *Repository) List(ctx context.Context, store domain.Store, scope domain.Scope, params ListParams) ([]domain.Account, error) {
	clause, args := scopeClause(scope, nil)
	conditions := []string{clause}

	if params.Status != "" {
		args = append(args, params.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.AssignedTo != "" {
		args = append(args, strings.ToLower(params.AssignedTo))
		conditions = append(conditions, fmt.Sprintf("LOWER(assigned_to) = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(contact_name ILIKE $%d OR company ILIKE $%d)", len(args), len(args)))
	}

	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	limitPos := len(args)
	args = append(args, params.Offset)
	offsetPos := len(args)

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, accountColumns, tableFor(store), strings.Join(conditions, " AND "), limitPos, offsetPos), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows, store)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// ListAllLeads returns every lead without scoping. Used by the escalation
// sweep, which runs with system privilege.
func (r *Repository) ListAllLeads(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM leads ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]domain.Account, 0)
	for rows.Next() {
		lead, err := scanAccount(rows, domain.StoreLead)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// ListLeadIDs returns the ids of every lead, for per-record task fan-out.
func (r *Repository) ListLeadIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM leads ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateParams carries the mutable account fields plus the version the
// caller last observed.
type UpdateParams struct {
	ContactName       string
	Company           string
	Email             string
	Phone             string
	Status            string
	AssignedTo        string
	Notes             string
	RetainerFeeCents  int64
	HourlyBudgetCents int64
	FilingFeeCents    int64
	ProposalSentAt    *time.Time
	ContractSentAt    *time.Time
	FollowUpAt        *time.Time
	ExpectedVersion   int
}

// Update writes the account if the stored version still matches
// ExpectedVersion, incrementing the version by one in the same statement.
// On a version mismatch it returns the current record together with
// ErrVersionConflict so the caller can re-apply intent.
func (r *Repository) Update(ctx context.Context, store domain.Store, id string, params UpdateParams) (domain.Account, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s SET
			contact_name = $3, company = $4, email = $5, phone = $6, status = $7,
			assigned_to = $8, notes = $9,
			retainer_fee_cents = $10, hourly_budget_cents = $11, filing_fee_cents = $12,
			proposal_sent_at = $13, contract_sent_at = $14, follow_up_at = $15,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING `+accountColumns, tableFor(store)),
		id, params.ExpectedVersion,
		params.ContactName, params.Company, params.Email, params.Phone, params.Status,
		params.AssignedTo, params.Notes,
		params.RetainerFeeCents, params.HourlyBudgetCents, params.FilingFeeCents,
		params.ProposalSentAt, params.ContractSentAt, params.FollowUpAt,
	)
	account, err := scanAccount(row, store)
	if !errors.Is(err, ErrNotFound) {
		return account, err
	}

	// Zero rows: either the id is gone or the version is stale. Re-read
	// without a version condition to tell the two apart.
	current, err := r.GetByID(ctx, store, id, domain.ScopeAll())
	if err != nil {
		return domain.Account{}, err
	}
	return current, ErrVersionConflict
}

// UpdateTracker persists escalation state back onto a lead. Tracker writes
// deliberately bypass the version guard: the sweep only touches tracker
// columns and must not race user edits of business fields.
func (r *Repository) UpdateTracker(ctx context.Context, id string, tracker domain.Tracker) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET
			tracked_status = $2, tracked_status_changed_at = $3, followup_count = $4,
			last_followup_at = $5, last_respond_at = $6, on_hold_notified_for = $7
		WHERE id = $1
	`, id, tracker.TrackedStatus, tracker.TrackedStatusChangedAt, tracker.FollowupCount,
		tracker.LastFollowupAt, tracker.LastRespondAt, tracker.OnHoldNotifiedFor)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
