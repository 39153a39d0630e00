// Package repository persists escalation notifications. Notifications are
// ephemeral: regenerated by the engine and deleted wholesale whenever the
// owning lead changes status.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"casedesk_backend/internal/accounts/domain"
)

// Notification is one stored escalation message.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	AccountID string    `json:"accountId"`
	Kind      string    `json:"kind"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Add stores one notification for a lead.
func (r *Repository) Add(ctx context.Context, accountID, kind, severity, message string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, account_id, kind, severity, message)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), accountID, kind, severity, message)
	return err
}

// DeleteForAccount removes every notification of a lead. Called on status
// change so stale messages never survive a transition.
func (r *Repository) DeleteForAccount(ctx context.Context, accountID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE account_id = $1`, accountID)
	return err
}

// List returns notifications for leads visible to the caller's scope,
// newest first. Visibility follows the lead, not the notification.
func (r *Repository) List(ctx context.Context, scope domain.Scope) ([]Notification, error) {
	clause, args := leadScopeClause(scope)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT n.id, n.account_id, n.kind, n.severity, n.message, n.created_at
		FROM notifications n
		JOIN leads l ON l.id = n.account_id
		WHERE %s
		ORDER BY n.created_at DESC
	`, clause), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Notification, 0)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Kind, &n.Severity, &n.Message, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func leadScopeClause(scope domain.Scope) (string, []interface{}) {
	if scope.Denied() {
		return "FALSE", nil
	}
	if scope.All {
		return "TRUE", nil
	}

	var (
		parts []string
		args  []interface{}
	)
	if len(scope.Names) > 0 {
		args = append(args, scope.Names)
		parts = append(parts, fmt.Sprintf("LOWER(l.assigned_to) = ANY($%d)", len(args)))
	}
	if scope.CreatedBy != "" {
		args = append(args, scope.CreatedBy)
		parts = append(parts, fmt.Sprintf("LOWER(l.created_by) = $%d", len(args)))
	}
	if len(parts) == 0 {
		return "FALSE", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
