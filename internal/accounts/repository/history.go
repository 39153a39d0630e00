package repository

import (
	"context"
	"time"

	"casedesk_backend/internal/accounts/domain"
)

// AppendHistory records one lifecycle entry for an account. History is
// append-only; entries are never updated or removed while the account
// lives.
func (r *Repository) AppendHistory(ctx context.Context, accountID, status, actor string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO account_status_history (account_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)
	`, accountID, status, actor, at)
	return err
}

// ListHistory returns an account's lifecycle entries in order.
func (r *Repository) ListHistory(ctx context.Context, accountID string) ([]domain.StatusHistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, status, changed_by, changed_at
		FROM account_status_history
		WHERE account_id = $1
		ORDER BY changed_at ASC, id ASC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.StatusHistoryEntry, 0)
	for rows.Next() {
		var e domain.StatusHistoryEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Status, &e.ChangedBy, &e.ChangedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LastStatusChange returns the timestamp of the most recent history entry,
// falling back to the account's creation time when no entry exists.
func (r *Repository) LastStatusChange(ctx context.Context, account domain.Account) (time.Time, error) {
	var at *time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT MAX(changed_at) FROM account_status_history WHERE account_id = $1
	`, account.ID).Scan(&at)
	if err != nil {
		return time.Time{}, err
	}
	if at == nil {
		return account.CreatedAt, nil
	}
	return *at, nil
}
