package repository

import (
	"strings"
	"testing"

	"casedesk_backend/internal/accounts/domain"
)

func TestRestoreQueriesAreInsertIfAbsent(t *testing.T) {
	for _, query := range []string{restoreEntityQuery, restoreCollectionQuery} {
		if !strings.Contains(query, "ON CONFLICT (id) DO NOTHING") {
			t.Errorf("restore must never overwrite live rows, got: %s", query)
		}
		if !strings.Contains(query, "jsonb_populate_record") {
			t.Errorf("restore must rebuild rows from the snapshot, got: %s", query)
		}
	}
}

func TestEntityTableByRecordType(t *testing.T) {
	if got := entityTable(RecordTypeLead); got != "leads" {
		t.Errorf("lead snapshots restore into leads, got %q", got)
	}
	if got := entityTable(RecordTypeClient); got != "clients" {
		t.Errorf("client snapshots restore into clients, got %q", got)
	}
}

func TestRecordTypeForStore(t *testing.T) {
	if got := recordTypeFor(domain.StoreLead); got != RecordTypeLead {
		t.Errorf("expected %q, got %q", RecordTypeLead, got)
	}
	if got := recordTypeFor(domain.StoreClient); got != RecordTypeClient {
		t.Errorf("expected %q, got %q", RecordTypeClient, got)
	}
}

func TestSnapshotCoversEveryDependentCollection(t *testing.T) {
	want := map[string]bool{
		"cases":          false,
		"notes":          false,
		"tasks":          false,
		"case_history":   false,
		"status_history": false,
		"chats":          false,
	}
	for _, coll := range snapshotCollections {
		if _, ok := want[coll.key]; !ok {
			t.Errorf("unexpected snapshot collection %q", coll.key)
			continue
		}
		want[coll.key] = true
	}
	for key, seen := range want {
		if !seen {
			t.Errorf("snapshot is missing collection %q", key)
		}
	}
}
