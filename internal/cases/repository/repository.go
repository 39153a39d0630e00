// Package repository persists cases, their state history, notes, and
// tasks. Reads are filtered by the caller's role-derived scope; updates
// are guarded by the case version.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	accounts "casedesk_backend/internal/accounts/domain"
	"casedesk_backend/internal/cases/domain"
)

var (
	ErrNotFound        = errors.New("case not found")
	ErrVersionConflict = errors.New("stale version")
)

const caseColumns = `id, account_id, case_type, title, description, state, assigned_to, created_by,
	version, last_state_change, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// scopeClause renders an account scope against the cases table. The rule
// shape matches the account stores: assignee names or creator.
func scopeClause(scope accounts.Scope, args []interface{}) (string, []interface{}) {
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

func scanCase(row pgx.Row) (domain.Case, error) {
	var c domain.Case
	err := row.Scan(
		&c.ID, &c.AccountID, &c.CaseType, &c.Title, &c.Description, &c.State,
		&c.AssignedTo, &c.CreatedBy, &c.Version, &c.LastStateChange, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Case{}, ErrNotFound
	}
	return c, err
}

// Create inserts a new case with its opening history entry in one
// transaction.
func (r *Repository) Create(ctx context.Context, c domain.Case) (domain.Case, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Case{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO cases (id, account_id, case_type, title, description, state, assigned_to, created_by, version, last_state_change)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		RETURNING `+caseColumns,
		c.ID, c.AccountID, c.CaseType, c.Title, c.Description, c.State, c.AssignedTo, c.CreatedBy, c.Version,
	)
	created, err := scanCase(row)
	if err != nil {
		return domain.Case{}, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO case_history (case_id, state, changed_by, changed_at)
		VALUES ($1, $2, $3, now())
	`, created.ID, created.State, created.CreatedBy); err != nil {
		return domain.Case{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Case{}, err
	}
	return created, nil
}

// GetByID loads one case restricted by the caller's scope.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, scope accounts.Scope) (domain.Case, error) {
	args := []interface{}{id}
	clause, args := scopeClause(scope, args)
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM cases WHERE id = $1 AND %s
	`, caseColumns, clause), args...)
	return scanCase(row)
}

// ListParams narrows a scoped case listing.
type ListParams struct {
	AccountID  string
	CaseType   string
	State      string
	AssignedTo string
	Limit      int
	Offset     int
}

// List returns cases visible to the caller's scope, newest first.
func (r *Repository) List(ctx context.Context, scope accounts.Scope, params ListParams) ([]domain.Case, error) {
	clause, args := scopeClause(scope, nil)
	conditions := []string{clause}

	if params.AccountID != "" {
		args = append(args, params.AccountID)
		conditions = append(conditions, fmt.Sprintf("account_id = $%d", len(args)))
	}
	if params.CaseType != "" {
		args = append(args, params.CaseType)
		conditions = append(conditions, fmt.Sprintf("case_type = $%d", len(args)))
	}
	if params.State != "" {
		args = append(args, params.State)
		conditions = append(conditions, fmt.Sprintf("state = $%d", len(args)))
	}
	if params.AssignedTo != "" {
		args = append(args, strings.ToLower(params.AssignedTo))
		conditions = append(conditions, fmt.Sprintf("LOWER(assigned_to) = $%d", len(args)))
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
		SELECT %s FROM cases
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, caseColumns, strings.Join(conditions, " AND "), limitPos, offsetPos), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Case, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateParams carries the mutable case fields plus the observed version.
type UpdateParams struct {
	Title           string
	Description     string
	State           string
	AssignedTo      string
	ExpectedVersion int
}

// Update writes the case if the stored version still matches, incrementing
// it in the same statement. A state change also bumps last_state_change
// and appends a history entry in the same transaction. On a version
// mismatch the current record is returned with ErrVersionConflict.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams, stateChanged bool, actor string) (domain.Case, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Case{}, err
	}
	defer tx.Rollback(ctx)

	stateClause := "last_state_change"
	if stateChanged {
		stateClause = "now()"
	}

	row := tx.QueryRow(ctx, fmt.Sprintf(`
		UPDATE cases SET
			title = $3, description = $4, state = $5, assigned_to = $6,
			last_state_change = %s, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING `+caseColumns, stateClause),
		id, params.ExpectedVersion, params.Title, params.Description, params.State, params.AssignedTo,
	)
	updated, err := scanCase(row)
	if errors.Is(err, ErrNotFound) {
		current, readErr := r.GetByID(ctx, id, accounts.ScopeAll())
		if readErr != nil {
			return domain.Case{}, readErr
		}
		return current, ErrVersionConflict
	}
	if err != nil {
		return domain.Case{}, err
	}

	if stateChanged {
		if _, err := tx.Exec(ctx, `
			INSERT INTO case_history (case_id, state, changed_by, changed_at)
			VALUES ($1, $2, $3, now())
		`, id, params.State, actor); err != nil {
			return domain.Case{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Case{}, err
	}
	return updated, nil
}

// Delete removes a case with its history, notes, and tasks.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cases WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListHistory returns a case's state history in order.
func (r *Repository) ListHistory(ctx context.Context, caseID uuid.UUID) ([]domain.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, case_id, state, changed_by, changed_at
		FROM case_history
		WHERE case_id = $1
		ORDER BY changed_at ASC, id ASC
	`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.ID, &e.CaseID, &e.State, &e.ChangedBy, &e.ChangedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddNote appends a note to a case.
func (r *Repository) AddNote(ctx context.Context, caseID uuid.UUID, author, body string) (domain.Note, error) {
	var n domain.Note
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notes (id, case_id, author, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, case_id, author, body, created_at
	`, uuid.New(), caseID, author, body).Scan(&n.ID, &n.CaseID, &n.Author, &n.Body, &n.CreatedAt)
	return n, err
}

// ListNotes returns a case's notes in order.
func (r *Repository) ListNotes(ctx context.Context, caseID uuid.UUID) ([]domain.Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, case_id, author, body, created_at
		FROM notes WHERE case_id = $1 ORDER BY created_at ASC
	`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]domain.Note, 0)
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.CaseID, &n.Author, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// AddTask creates a task on a case.
func (r *Repository) AddTask(ctx context.Context, caseID uuid.UUID, title string, dueAt *time.Time, createdBy string) (domain.Task, error) {
	var t domain.Task
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, case_id, title, due_at, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, case_id, title, done, due_at, created_by, created_at, updated_at
	`, uuid.New(), caseID, title, dueAt, createdBy).Scan(
		&t.ID, &t.CaseID, &t.Title, &t.Done, &t.DueAt, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

// ListTasks returns a case's tasks in order.
func (r *Repository) ListTasks(ctx context.Context, caseID uuid.UUID) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, case_id, title, done, due_at, created_by, created_at, updated_at
		FROM tasks WHERE case_id = $1 ORDER BY created_at ASC
	`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.CaseID, &t.Title, &t.Done, &t.DueAt, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// SetTaskDone toggles a task's completion flag.
func (r *Repository) SetTaskDone(ctx context.Context, taskID uuid.UUID, done bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks SET done = $2, updated_at = now() WHERE id = $1
	`, taskID, done)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
