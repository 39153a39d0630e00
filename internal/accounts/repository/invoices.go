package repository

import (
	"context"

	"github.com/google/uuid"

	"casedesk_backend/internal/accounts/domain"
)

// CreateInvoice inserts a billing record for a confirmed client.
func (r *Repository) CreateInvoice(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO invoices (id, account_id, status, amount_cents, description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, inv.ID, inv.AccountID, inv.Status, inv.AmountCents, inv.Description, inv.CreatedBy).Scan(&inv.CreatedAt)
	return inv, err
}

// ListInvoices returns an account's invoices, newest first.
func (r *Repository) ListInvoices(ctx context.Context, accountID string) ([]domain.Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, status, amount_cents, description, created_by, created_at
		FROM invoices
		WHERE account_id = $1
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0)
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(&inv.ID, &inv.AccountID, &inv.Status, &inv.AmountCents, &inv.Description, &inv.CreatedBy, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}
