// Package repository persists the append-only audit log.
package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one audit log record. Entries are only ever inserted.
type Entry struct {
	ID         int64           `json:"id"`
	Actor      string          `json:"actor"`
	Role       string          `json:"role"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource"`
	ResourceID string          `json:"resourceId"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one entry to the log.
func (r *Repository) Insert(ctx context.Context, entry Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (actor, role, action, resource, resource_id, details)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.Actor, entry.Role, entry.Action, entry.Resource, entry.ResourceID, entry.Details)
	return err
}

// ListParams filters the audit log listing.
type ListParams struct {
	Actor      string
	Action     string
	Resource   string
	ResourceID string
	Limit      int
	Offset     int
}

// List returns entries newest first.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Entry, error) {
	query := `
		SELECT id, actor, role, action, resource, resource_id, details, created_at
		FROM audit_log
		WHERE 1=1
	`
	args := []interface{}{}
	argPos := 1

	if params.Actor != "" {
		query += ` AND actor = $` + strconv.Itoa(argPos)
		args = append(args, params.Actor)
		argPos++
	}
	if params.Action != "" {
		query += ` AND action = $` + strconv.Itoa(argPos)
		args = append(args, params.Action)
		argPos++
	}
	if params.Resource != "" {
		query += ` AND resource = $` + strconv.Itoa(argPos)
		args = append(args, params.Resource)
		argPos++
	}
	if params.ResourceID != "" {
		query += ` AND resource_id = $` + strconv.Itoa(argPos)
		args = append(args, params.ResourceID)
		argPos++
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(argPos) + ` OFFSET $` + strconv.Itoa(argPos+1)
	args = append(args, limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Role, &e.Action, &e.Resource, &e.ResourceID, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
