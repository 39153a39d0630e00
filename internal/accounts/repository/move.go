package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"casedesk_backend/internal/accounts/domain"
)

// The store migration is a single explicit move: delete-from and
// insert-into under one transaction and one version check, so an account
// can never be observed in both stores or in neither.

// MoveToClients confirms a lead: copies the row into the client store with
// an incremented version and a confirmation timestamp, deletes the lead
// copy, retargets dependent cases to the client side, appends the status
// history entry, and synthesizes a draft invoice when fee components are
// present. The whole move is one transaction guarded by expectedVersion.
func (r *Repository) MoveToClients(ctx context.Context, id string, expectedVersion int, actor string, now time.Time) (domain.Account, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Account{}, err
	}
	defer tx.Rollback(ctx)

	lead, err := lockAccount(ctx, tx, tableLeads, id)
	if err != nil {
		return domain.Account{}, err
	}
	if lead.Version != expectedVersion {
		return lead, ErrVersionConflict
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO clients (id, contact_name, company, email, phone, status, assigned_to, created_by,
			version, notes, retainer_fee_cents, hourly_budget_cents, filing_fee_cents,
			proposal_sent_at, contract_sent_at, follow_up_at, confirmed_at, created_at, updated_at,
			tracked_status, tracked_status_changed_at)
		SELECT id, contact_name, company, email, phone, $2, assigned_to, created_by,
			version + 1, notes, retainer_fee_cents, hourly_budget_cents, filing_fee_cents,
			proposal_sent_at, contract_sent_at, follow_up_at, $3, created_at, $3,
			$2, $3
		FROM leads WHERE id = $1
		RETURNING `+accountColumns, id, domain.StatusClient, now)
	client, err := scanAccount(row, domain.StoreClient)
	if err != nil {
		return domain.Account{}, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id); err != nil {
		return domain.Account{}, err
	}

	// Confirmed-client work belongs to the client roster; cases follow the
	// account's assignee across the boundary.
	if _, err := tx.Exec(ctx, `
		UPDATE cases SET case_type = $2, assigned_to = $3, updated_at = $4
		WHERE account_id = $1
	`, id, domain.CaseTypeClient, client.AssignedTo, now); err != nil {
		return domain.Account{}, err
	}

	if err := appendHistory(ctx, tx, id, domain.StatusClient, actor, now); err != nil {
		return domain.Account{}, err
	}

	if client.HasFees() {
		if _, err := tx.Exec(ctx, `
			INSERT INTO invoices (id, account_id, status, amount_cents, description, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.NewString(), id, domain.InvoiceStatusDraft, client.TotalFeeCents(),
			"Engagement fees on confirmation", actor, now); err != nil {
			return domain.Account{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Account{}, err
	}
	return client, nil
}

// MoveToLeads demotes a confirmed client back into the lead store under
// the given working status. Confirmation-only fields are cleared and the
// assignee is reset; dependent cases move back to the customer side.
func (r *Repository) MoveToLeads(ctx context.Context, id string, toStatus string, expectedVersion int, actor string, now time.Time) (domain.Account, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Account{}, err
	}
	defer tx.Rollback(ctx)

	client, err := lockAccount(ctx, tx, tableClients, id)
	if err != nil {
		return domain.Account{}, err
	}
	if client.Version != expectedVersion {
		return client, ErrVersionConflict
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO leads (id, contact_name, company, email, phone, status, assigned_to, created_by,
			version, notes, retainer_fee_cents, hourly_budget_cents, filing_fee_cents,
			proposal_sent_at, contract_sent_at, follow_up_at, confirmed_at, created_at, updated_at,
			tracked_status, tracked_status_changed_at)
		SELECT id, contact_name, company, email, phone, $2, '', created_by,
			version + 1, notes, retainer_fee_cents, hourly_budget_cents, filing_fee_cents,
			proposal_sent_at, contract_sent_at, follow_up_at, NULL, created_at, $3,
			$2, $3
		FROM clients WHERE id = $1
		RETURNING `+accountColumns, id, toStatus, now)
	lead, err := scanAccount(row, domain.StoreLead)
	if err != nil {
		return domain.Account{}, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id); err != nil {
		return domain.Account{}, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE cases SET case_type = $2, assigned_to = '', updated_at = $3
		WHERE account_id = $1
	`, id, domain.CaseTypeCustomer, now); err != nil {
		return domain.Account{}, err
	}

	if err := appendHistory(ctx, tx, id, toStatus, actor, now); err != nil {
		return domain.Account{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Account{}, err
	}
	return lead, nil
}

func lockAccount(ctx context.Context, tx pgx.Tx, table, id string) (domain.Account, error) {
	row := tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM `+table+` WHERE id = $1 FOR UPDATE`, id)
	store := domain.StoreLead
	if table == tableClients {
		store = domain.StoreClient
	}
	return scanAccount(row, store)
}

func appendHistory(ctx context.Context, tx pgx.Tx, accountID, status, actor string, now time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO account_status_history (account_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)
	`, accountID, status, actor, now)
	return err
}
