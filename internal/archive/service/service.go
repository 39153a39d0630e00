// Package service implements archiving and restore on top of the snapshot
// repository.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"casedesk_backend/internal/accounts/domain"
	"casedesk_backend/internal/archive/repository"
	"casedesk_backend/platform/apperr"
	"casedesk_backend/platform/logger"
)

// AuditWriter records audit entries for archive operations.
type AuditWriter interface {
	Record(ctx context.Context, actor, role, action, resource, resourceID string, details interface{})
}

// Exporter mirrors finished snapshots to external storage.
type Exporter interface {
	Export(ctx context.Context, record repository.ArchivedRecord) error
}

type Service struct {
	repo     *repository.Repository
	audit    AuditWriter
	exporter Exporter
	log      *logger.Logger
}

func New(repo *repository.Repository, audit AuditWriter, exporter Exporter, log *logger.Logger) *Service {
	return &Service{repo: repo, audit: audit, exporter: exporter, log: log}
}

// ArchivedRecordResponse is an archive entry on the wire. The snapshot is
// only populated on detail reads.
type ArchivedRecordResponse struct {
	ID         string          `json:"id"`
	RecordType string          `json:"recordType"`
	OriginalID string          `json:"originalId"`
	DeletedAt  time.Time       `json:"deletedAt"`
	DeletedBy  string          `json:"deletedBy"`
	Automatic  bool            `json:"automatic"`
	Snapshot   json.RawMessage `json:"snapshot,omitempty"`
}

func toResponse(rec repository.ArchivedRecord) ArchivedRecordResponse {
	return ArchivedRecordResponse{
		ID:         rec.ID.String(),
		RecordType: rec.RecordType,
		OriginalID: rec.OriginalID,
		DeletedAt:  rec.DeletedAt,
		DeletedBy:  rec.DeletedBy,
		Automatic:  rec.Automatic,
		Snapshot:   rec.Snapshot,
	}
}

// ArchiveAccount snapshots and removes an account with everything that
// hangs off it. Used both for manual deletes and for automatic archiving
// after the follow-up cap.
func (s *Service) ArchiveAccount(ctx context.Context, store domain.Store, id, actor string, automatic bool) error {
	record, err := s.repo.Archive(ctx, store, id, actor, automatic)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("account not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to archive account", err)
	}

	s.audit.Record(ctx, actor, "", "archive", "account", id, map[string]interface{}{
		"archiveId": record.ID.String(),
		"automatic": automatic,
	})
	s.export(record)
	return nil
}

// export mirrors the snapshot to object storage without blocking the
// caller. The archive row is the source of truth; an export failure is
// only logged.
func (s *Service) export(record repository.ArchivedRecord) {
	if s.exporter == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.exporter.Export(ctx, record); err != nil {
			s.log.Error("archive export failed", "archive_id", record.ID.String(), "error", err)
		}
	}()
}

// List returns all archive entries, newest first.
func (s *Service) List(ctx context.Context) ([]ArchivedRecordResponse, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list archive", err)
	}
	out := make([]ArchivedRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toResponse(rec))
	}
	return out, nil
}

// Get returns one archive entry including its full snapshot.
func (s *Service) Get(ctx context.Context, archiveID uuid.UUID) (ArchivedRecordResponse, error) {
	rec, err := s.repo.Get(ctx, archiveID)
	if errors.Is(err, repository.ErrNotFound) {
		return ArchivedRecordResponse{}, apperr.NotFound("archive record not found")
	}
	if err != nil {
		return ArchivedRecordResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load archive record", err)
	}
	return toResponse(rec), nil
}

// Restore brings an archived account and its dependents back to the live
// tables and removes the archive entry. Documents whose ids are already
// live are left untouched.
func (s *Service) Restore(ctx context.Context, archiveID uuid.UUID, actor string) (ArchivedRecordResponse, error) {
	rec, err := s.repo.Restore(ctx, archiveID)
	if errors.Is(err, repository.ErrNotFound) {
		return ArchivedRecordResponse{}, apperr.NotFound("archive record not found")
	}
	if err != nil {
		return ArchivedRecordResponse{}, apperr.Wrap(apperr.KindInternal, "failed to restore archive record", err)
	}

	s.audit.Record(ctx, actor, "", "restore", "account", rec.OriginalID, map[string]interface{}{
		"archiveId":  archiveID.String(),
		"recordType": rec.RecordType,
	})

	resp := toResponse(rec)
	resp.Snapshot = nil
	return resp, nil
}
