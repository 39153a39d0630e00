// Package notifications provides the notifications bounded context:
// stored escalation messages, the read-through refresh endpoint, and the
// outbound email subscribers.
package notifications

import (
	"context"

	"casedesk_backend/internal/email"
	"casedesk_backend/internal/escalation"
	"casedesk_backend/internal/events"
	apphttp "casedesk_backend/internal/http"
	"casedesk_backend/internal/notifications/handler"
	"casedesk_backend/internal/notifications/repository"
	"casedesk_backend/internal/notifications/service"
	"casedesk_backend/platform/config"
	"casedesk_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StaffDirectory resolves a staff member's email address from their
// display name. The auth user store satisfies it.
type StaffDirectory interface {
	EmailFor(ctx context.Context, staffName string) (string, error)
}

// Module is the notifications bounded context module implementing
// http.Module.
type Module struct {
	handler   *handler.Handler
	service   *service.Service
	repo      *repository.Repository
	sender    email.Sender
	directory StaffDirectory
	cfg       config.NotificationConfig
	log       *logger.Logger
}

// NewModule creates and initializes the notifications module.
func NewModule(pool *pgxpool.Pool, runner *escalation.Runner, sender email.Sender, directory StaffDirectory, cfg config.NotificationConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, runner, log)
	h := handler.New(svc)

	return &Module{handler: h, service: svc, repo: repo, sender: sender, directory: directory, cfg: cfg, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notifications"
}

// Repository returns the notification store for the escalation runner.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts notification routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/notifications", m.handler.List)
}

// RegisterHandlers subscribes the email side effects to domain events.
// Mail is fire-and-forget: a delivery failure is logged and never blocks
// the transition that triggered it.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.ProposalDispatched{}.EventName(), m)
	bus.Subscribe(events.ContractDispatched{}.EventName(), m)
	bus.Subscribe(events.AccountConfirmed{}.EventName(), m)
	bus.Subscribe(events.LeadArchived{}.EventName(), m)
	bus.Subscribe(events.EscalationRaised{}.EventName(), m)
}

// Handle routes events to the appropriate mail delivery.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	alerts := m.cfg.GetAlertsEmailAddress()

	switch e := event.(type) {
	case events.ProposalDispatched:
		if e.Email == "" {
			return nil
		}
		return m.sender.SendProposalDispatched(ctx, e.Email, e.ContactName)
	case events.ContractDispatched:
		if e.Email == "" {
			return nil
		}
		return m.sender.SendContractDispatched(ctx, e.Email, e.ContactName)
	case events.AccountConfirmed:
		if alerts == "" {
			return nil
		}
		return m.sender.SendClientConfirmed(ctx, alerts, e.ContactName)
	case events.LeadArchived:
		to := m.recipientFor(ctx, e.AssignedTo, alerts)
		if to == "" {
			return nil
		}
		return m.sender.SendArchiveNotice(ctx, to, e.ContactName, e.Automatic)
	case events.EscalationRaised:
		to := m.recipientFor(ctx, e.AssignedTo, alerts)
		if to == "" {
			return nil
		}
		return m.sender.SendEscalationAlert(ctx, to, e.ContactName, e.Message)
	default:
		return nil
	}
}

// recipientFor resolves the assignee's address through the staff
// directory, falling back to the shared alerts inbox for unassigned
// accounts or unknown names.
func (m *Module) recipientFor(ctx context.Context, assignee, fallback string) string {
	if assignee == "" || m.directory == nil {
		return fallback
	}
	addr, err := m.directory.EmailFor(ctx, assignee)
	if err != nil || addr == "" {
		return fallback
	}
	return addr
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
