// Package repository persists archive snapshots. Archiving gathers an
// account and every dependent record into one immutable jsonb snapshot and
// deletes the live copies in the same transaction; restore re-inserts the
// snapshot with an insert-if-absent policy so a second restore is a no-op.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"casedesk_backend/internal/accounts/domain"
)

var ErrNotFound = errors.New("archive record not found")

const (
	RecordTypeLead   = "lead"
	RecordTypeClient = "client"

	ChatReasonManual    = "manual"
	ChatReasonAutomatic = "automatic"
)

// ArchivedRecord is one immutable snapshot of a deleted account and its
// dependents.
type ArchivedRecord struct {
	ID         uuid.UUID       `json:"id"`
	RecordType string          `json:"recordType"`
	OriginalID string          `json:"originalId"`
	DeletedAt  time.Time       `json:"deletedAt"`
	DeletedBy  string          `json:"deletedBy"`
	Automatic  bool            `json:"automatic"`
	Snapshot   json.RawMessage `json:"snapshot,omitempty"`
}

// snapshotCollections maps snapshot keys to the live tables they are
// gathered from and restored into. The entity row itself is handled
// separately because its table depends on the record type.
var snapshotCollections = []struct {
	key   string
	table string
	fk    string
}{
	{"cases", "cases", "account_id"},
	{"notes", "notes", "case_id"},
	{"tasks", "tasks", "case_id"},
	{"case_history", "case_history", "case_id"},
	{"status_history", "account_status_history", "account_id"},
	{"chats", "chat_messages", "account_id"},
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func entityTable(recordType string) string {
	if recordType == RecordTypeClient {
		return "clients"
	}
	return "leads"
}

func recordTypeFor(store domain.Store) string {
	if store == domain.StoreClient {
		return RecordTypeClient
	}
	return RecordTypeLead
}

// Archive snapshots an account with all dependent collections and deletes
// the live copies, all in one transaction. Chat history is additionally
// copied into archived_chats with its own reason tag so it can be audited
// independently of the entity snapshot.
func (r *Repository) Archive(ctx context.Context, store domain.Store, accountID, actor string, automatic bool) (ArchivedRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return ArchivedRecord{}, err
	}
	defer tx.Rollback(ctx)

	table := entityTable(recordTypeFor(store))

	var entity json.RawMessage
	err = tx.QueryRow(ctx, fmt.Sprintf(`SELECT to_jsonb(t) FROM %s t WHERE id = $1`, table), accountID).Scan(&entity)
	if errors.Is(err, pgx.ErrNoRows) {
		return ArchivedRecord{}, ErrNotFound
	}
	if err != nil {
		return ArchivedRecord{}, err
	}

	snapshot := map[string]json.RawMessage{"entity": entity}
	for _, coll := range snapshotCollections {
		var rows json.RawMessage
		query := fmt.Sprintf(`
			SELECT COALESCE(jsonb_agg(to_jsonb(t)), '[]'::jsonb) FROM %s t WHERE t.%s = $1
		`, coll.table, coll.fk)
		if coll.fk == "case_id" {
			query = fmt.Sprintf(`
				SELECT COALESCE(jsonb_agg(to_jsonb(t)), '[]'::jsonb) FROM %s t
				WHERE t.case_id IN (SELECT id FROM cases WHERE account_id = $1)
			`, coll.table)
		}
		if err := tx.QueryRow(ctx, query, accountID).Scan(&rows); err != nil {
			return ArchivedRecord{}, err
		}
		snapshot[coll.key] = rows
	}

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return ArchivedRecord{}, err
	}

	record := ArchivedRecord{
		ID:         uuid.New(),
		RecordType: recordTypeFor(store),
		OriginalID: accountID,
		DeletedBy:  actor,
		Automatic:  automatic,
		Snapshot:   snapshotJSON,
	}
	if err := tx.QueryRow(ctx, `
		INSERT INTO archived_records (id, record_type, original_id, deleted_by, automatic, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING deleted_at
	`, record.ID, record.RecordType, record.OriginalID, record.DeletedBy, record.Automatic, record.Snapshot).Scan(&record.DeletedAt); err != nil {
		return ArchivedRecord{}, err
	}

	reason := ChatReasonManual
	if automatic {
		reason = ChatReasonAutomatic
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO archived_chats (id, account_id, reason, messages, archived_at)
		SELECT $1, $2, $3, COALESCE(jsonb_agg(to_jsonb(c)), '[]'::jsonb), now()
		FROM chat_messages c WHERE c.account_id = $2
	`, uuid.New(), accountID, reason); err != nil {
		return ArchivedRecord{}, err
	}

	// Dependent collections first, entity row last; no orphaned children
	// can remain.
	deletes := []string{
		`DELETE FROM notifications WHERE account_id = $1`,
		`DELETE FROM chat_messages WHERE account_id = $1`,
		`DELETE FROM notes WHERE case_id IN (SELECT id FROM cases WHERE account_id = $1)`,
		`DELETE FROM tasks WHERE case_id IN (SELECT id FROM cases WHERE account_id = $1)`,
		`DELETE FROM case_history WHERE case_id IN (SELECT id FROM cases WHERE account_id = $1)`,
		`DELETE FROM cases WHERE account_id = $1`,
		`DELETE FROM account_status_history WHERE account_id = $1`,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table),
	}
	for _, stmt := range deletes {
		if _, err := tx.Exec(ctx, stmt, accountID); err != nil {
			return ArchivedRecord{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return ArchivedRecord{}, err
	}
	record.Snapshot = snapshotJSON
	return record, nil
}

// restoreEntityQuery re-inserts the archived entity row without touching a
// live row that reuses the same id.
const restoreEntityQuery = `
	INSERT INTO %s
	SELECT * FROM jsonb_populate_record(NULL::%s, $1)
	ON CONFLICT (id) DO NOTHING
`

// restoreCollectionQuery re-inserts one dependent collection with the same
// insert-if-absent policy.
const restoreCollectionQuery = `
	INSERT INTO %s
	SELECT * FROM jsonb_populate_recordset(NULL::%s, $1)
	ON CONFLICT (id) DO NOTHING
`

// Restore re-inserts every document of a snapshot, skipping any id that is
// already live, then removes the archive entry. Restoring the same
// snapshot twice therefore produces no duplicates. The archived_chats
// audit copy is deliberately kept.
func (r *Repository) Restore(ctx context.Context, archiveID uuid.UUID) (ArchivedRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return ArchivedRecord{}, err
	}
	defer tx.Rollback(ctx)

	record, err := r.getLocked(ctx, tx, archiveID)
	if err != nil {
		return ArchivedRecord{}, err
	}

	var snapshot map[string]json.RawMessage
	if err := json.Unmarshal(record.Snapshot, &snapshot); err != nil {
		return ArchivedRecord{}, fmt.Errorf("corrupt snapshot %s: %w", archiveID, err)
	}

	table := entityTable(record.RecordType)
	if entity, ok := snapshot["entity"]; ok {
		if _, err := tx.Exec(ctx, fmt.Sprintf(restoreEntityQuery, table, table), entity); err != nil {
			return ArchivedRecord{}, err
		}
	}

	for _, coll := range snapshotCollections {
		if coll.key == "chats" {
			continue // chat history lives on in archived_chats
		}
		rows, ok := snapshot[coll.key]
		if !ok {
			continue
		}
		if _, err := tx.Exec(ctx, fmt.Sprintf(restoreCollectionQuery, coll.table, coll.table), rows); err != nil {
			return ArchivedRecord{}, err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM archived_records WHERE id = $1`, archiveID); err != nil {
		return ArchivedRecord{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return ArchivedRecord{}, err
	}
	return record, nil
}

// List returns archive entries without their snapshots, newest first.
func (r *Repository) List(ctx context.Context) ([]ArchivedRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, record_type, original_id, deleted_at, deleted_by, automatic
		FROM archived_records
		ORDER BY deleted_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]ArchivedRecord, 0)
	for rows.Next() {
		var rec ArchivedRecord
		if err := rows.Scan(&rec.ID, &rec.RecordType, &rec.OriginalID, &rec.DeletedAt, &rec.DeletedBy, &rec.Automatic); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns one archive entry including its snapshot.
func (r *Repository) Get(ctx context.Context, archiveID uuid.UUID) (ArchivedRecord, error) {
	var rec ArchivedRecord
	err := r.pool.QueryRow(ctx, `
		SELECT id, record_type, original_id, deleted_at, deleted_by, automatic, snapshot
		FROM archived_records WHERE id = $1
	`, archiveID).Scan(&rec.ID, &rec.RecordType, &rec.OriginalID, &rec.DeletedAt, &rec.DeletedBy, &rec.Automatic, &rec.Snapshot)
	if errors.Is(err, pgx.ErrNoRows) {
		return ArchivedRecord{}, ErrNotFound
	}
	return rec, err
}

func (r *Repository) getLocked(ctx context.Context, tx pgx.Tx, archiveID uuid.UUID) (ArchivedRecord, error) {
	var rec ArchivedRecord
	err := tx.QueryRow(ctx, `
		SELECT id, record_type, original_id, deleted_at, deleted_by, automatic, snapshot
		FROM archived_records WHERE id = $1 FOR UPDATE
	`, archiveID).Scan(&rec.ID, &rec.RecordType, &rec.OriginalID, &rec.DeletedAt, &rec.DeletedBy, &rec.Automatic, &rec.Snapshot)
	if errors.Is(err, pgx.ErrNoRows) {
		return ArchivedRecord{}, ErrNotFound
	}
	return rec, err
}
