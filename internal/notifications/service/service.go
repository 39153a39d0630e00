// Package service implements the notifications read surface. Reading
// notifications first refreshes the escalation state synchronously, so the
// caller always sees decisions based on the current clock rather than the
// last sweep.
package service

import (
	"context"
	"time"

	accounts "casedesk_backend/internal/accounts/domain"
	"casedesk_backend/internal/escalation"
	"casedesk_backend/internal/notifications/repository"
	"casedesk_backend/platform/apperr"
	"casedesk_backend/platform/logger"
)

// NotificationResponse is one notification on the wire.
type NotificationResponse struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Kind      string    `json:"kind"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Service struct {
	repo   *repository.Repository
	runner *escalation.Runner
	log    *logger.Logger
}

func New(repo *repository.Repository, runner *escalation.Runner, log *logger.Logger) *Service {
	return &Service{repo: repo, runner: runner, log: log}
}

// List refreshes escalation state and returns the notifications for leads
// visible to the caller, newest first. A refresh failure on individual
// records is logged inside the runner and does not block the read.
func (s *Service) List(ctx context.Context, caller accounts.Identity) ([]NotificationResponse, error) {
	if err := s.runner.EvaluateAll(ctx); err != nil {
		s.log.Error("notification refresh failed", "error", err)
	}

	stored, err := s.repo.List(ctx, accounts.ResolveLeadScope(caller))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list notifications", err)
	}

	out := make([]NotificationResponse, 0, len(stored))
	for _, n := range stored {
		out = append(out, NotificationResponse{
			ID:        n.ID.String(),
			AccountID: n.AccountID,
			Kind:      n.Kind,
			Severity:  n.Severity,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		})
	}
	return out, nil
}
