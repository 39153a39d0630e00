// Package service implements audit recording and the admin read surface.
// Recording is best-effort: a failed insert is logged and never fails the
// operation being audited.
package service

import (
	"context"
	"encoding/json"
	"time"

	"casedesk_backend/internal/audit/repository"
	"casedesk_backend/platform/apperr"
	"casedesk_backend/platform/logger"
)

type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Record appends one audit entry. Details may be any JSON-encodable value
// or nil.
func (s *Service) Record(ctx context.Context, actor, role, action, resource, resourceID string, details interface{}) {
	var raw json.RawMessage
	if details != nil {
		encoded, err := json.Marshal(details)
		if err != nil {
			s.log.Error("failed to encode audit details", "action", action, "resource", resource, "error", err)
		} else {
			raw = encoded
		}
	}

	entry := repository.Entry{
		Actor:      actor,
		Role:       role,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    raw,
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		s.log.Error("failed to record audit entry",
			"actor", actor, "action", action, "resource", resource, "resource_id", resourceID, "error", err)
	}
}

// EntryResponse is one audit entry on the wire.
type EntryResponse struct {
	ID         int64           `json:"id"`
	Actor      string          `json:"actor"`
	Role       string          `json:"role"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource"`
	ResourceID string          `json:"resourceId"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// List returns audit entries newest first.
func (s *Service) List(ctx context.Context, params repository.ListParams) ([]EntryResponse, error) {
	entries, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list audit log", err)
	}

	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryResponse{
			ID:         e.ID,
			Actor:      e.Actor,
			Role:       e.Role,
			Action:     e.Action,
			Resource:   e.Resource,
			ResourceID: e.ResourceID,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out, nil
}
