package escalation

import (
	"context"
	"errors"
	"time"

	"casedesk_backend/internal/accounts/domain"
	"casedesk_backend/internal/accounts/repository"
	"casedesk_backend/internal/events"
	"casedesk_backend/platform/logger"
)

// NotificationStore persists escalation notifications for a lead.
type NotificationStore interface {
	DeleteForAccount(ctx context.Context, accountID string) error
	Add(ctx context.Context, accountID, kind, severity, message string) error
}

// Archiver snapshots a lead with its dependents and deletes the live
// copies.
type Archiver interface {
	ArchiveAccount(ctx context.Context, store domain.Store, id, actor string, automatic bool) error
}

// Runner applies engine decisions to the stores. Both the periodic sweep
// and the read-through refresh on the notifications endpoint go through
// here, so the two paths cannot drift.
type Runner struct {
	repo          *repository.Repository
	notifications NotificationStore
	archiver      Archiver
	bus           events.Bus
	log           *logger.Logger
	now           func() time.Time
}

func NewRunner(repo *repository.Repository, notifications NotificationStore, archiver Archiver, bus events.Bus, log *logger.Logger) *Runner {
	return &Runner{
		repo:          repo,
		notifications: notifications,
		archiver:      archiver,
		bus:           bus,
		log:           log,
		now:           time.Now,
	}
}

// EvaluateAll sweeps every lead. A failure on one record is logged and the
// sweep continues; one malformed lead never halts the cycle.
func (r *Runner) EvaluateAll(ctx context.Context) error {
	leads, err := r.repo.ListAllLeads(ctx)
	if err != nil {
		return err
	}
	for _, lead := range leads {
		if err := r.EvaluateLead(ctx, lead); err != nil {
			r.log.SweepError(lead.ID, err)
		}
	}
	return nil
}

// EvaluateLeadByID loads one lead and evaluates it. A lead that no longer
// exists (confirmed or archived since enqueue) is skipped silently.
func (r *Runner) EvaluateLeadByID(ctx context.Context, id string) error {
	lead, err := r.repo.GetByID(ctx, domain.StoreLead, id, domain.ScopeAll())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	return r.EvaluateLead(ctx, lead)
}

// EvaluateLead runs the engine on one lead and persists the outcome:
// stale notifications removed on reset, new ones stored and published,
// exhausted leads archived, and the tracker written back.
func (r *Runner) EvaluateLead(ctx context.Context, lead domain.Account) error {
	lastChange, err := r.repo.LastStatusChange(ctx, lead)
	if err != nil {
		return err
	}

	decision := Evaluate(lead, lastChange, r.now())

	if decision.Reset {
		if err := r.notifications.DeleteForAccount(ctx, lead.ID); err != nil {
			return err
		}
	}

	if decision.Archive {
		if err := r.archiver.ArchiveAccount(ctx, domain.StoreLead, lead.ID, domain.SystemActor, true); err != nil {
			return err
		}
		r.bus.Publish(ctx, events.LeadArchived{
			BaseEvent:   events.NewBaseEvent(),
			AccountID:   lead.ID,
			ContactName: lead.ContactName,
			AssignedTo:  lead.AssignedTo,
			Automatic:   true,
			Actor:       domain.SystemActor,
		})
		return nil
	}

	for _, n := range decision.Notifications {
		if err := r.notifications.Add(ctx, lead.ID, n.Kind, n.Severity, n.Message); err != nil {
			return err
		}
		r.bus.Publish(ctx, events.EscalationRaised{
			BaseEvent:   events.NewBaseEvent(),
			AccountID:   lead.ID,
			Kind:        n.Kind,
			Severity:    n.Severity,
			Message:     n.Message,
			AssignedTo:  lead.AssignedTo,
			ContactName: lead.ContactName,
		})
	}

	if decision.TrackerChanged {
		if err := r.repo.UpdateTracker(ctx, lead.ID, decision.Tracker); err != nil {
			return err
		}
	}
	return nil
}
