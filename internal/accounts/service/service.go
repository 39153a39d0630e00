// Package service implements the account lifecycle business logic: scoped
// reads, version-guarded writes, status transitions, and the migration
// between the lead and confirmed-client stores.
package service

import (
	"context"
	"errors"
	"time"

	"casedesk_backend/internal/accounts/domain"
	"casedesk_backend/internal/accounts/repository"
	"casedesk_backend/internal/accounts/transport"
	"casedesk_backend/internal/events"
	"casedesk_backend/platform/apperr"
	"casedesk_backend/platform/logger"
	"casedesk_backend/platform/phone"
	"casedesk_backend/platform/staffname"
)

// AuditWriter records state-changing actions. Failures are logged by the
// implementation and never block the action.
type AuditWriter interface {
	Record(ctx context.Context, actor, role, action, resource, resourceID string, details interface{})
}

// Archiver snapshots an account with its dependents and deletes the live
// copies.
type Archiver interface {
	ArchiveAccount(ctx context.Context, store domain.Store, id, actor string, automatic bool) error
}

type Service struct {
	repo     *repository.Repository
	audit    AuditWriter
	archiver Archiver
	bus      events.Bus
	log      *logger.Logger
}

func New(repo *repository.Repository, audit AuditWriter, archiver Archiver, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, audit: audit, archiver: archiver, bus: bus, log: log}
}

func scopeFor(store domain.Store, id domain.Identity) domain.Scope {
	if store == domain.StoreClient {
		return domain.ResolveClientScope(id)
	}
	return domain.ResolveLeadScope(id)
}

// Create inserts a new lead. Only intake workers, managers, and
// administrators may create accounts.
func (s *Service) Create(ctx context.Context, caller domain.Identity, req transport.CreateAccountRequest) (transport.AccountResponse, error) {
	role := domain.ParseRole(caller.Role())
	if !role.CanCreateLeads() {
		return transport.AccountResponse{}, apperr.Forbidden("your role cannot create leads")
	}

	assignee := staffname.Normalize(req.AssignedTo)
	if assignee != "" {
		if err := domain.ValidateCaseAssignment(domain.CaseTypeCustomer, assignee); err != nil {
			return transport.AccountResponse{}, err
		}
	}

	now := time.Now()
	creator := staffname.Normalize(caller.StaffName())
	account := domain.Account{
		ID:                domain.NewAccountID(creator, now),
		ContactName:       req.ContactName,
		Company:           req.Company,
		Email:             req.Email,
		Phone:             phone.NormalizeE164(req.Phone),
		Status:            domain.StatusIntake,
		AssignedTo:        assignee,
		CreatedBy:         creator,
		Version:           1,
		Notes:             req.Notes,
		RetainerFeeCents:  req.RetainerFeeCents,
		HourlyBudgetCents: req.HourlyBudgetCents,
		FilingFeeCents:    req.FilingFeeCents,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return transport.AccountResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create lead", err)
	}

	if err := s.repo.AppendHistory(ctx, created.ID, created.Status, creator, now); err != nil {
		s.log.Error("failed to append initial history", "accountId", created.ID, "error", err)
	}

	s.audit.Record(ctx, creator, caller.Role(), "create", "lead", created.ID, nil)
	return transport.ToAccountResponse(created), nil
}

// Get returns one account with its lifecycle history, restricted by the
// caller's scope. A record outside scope reads as not found.
func (s *Service) Get(ctx context.Context, caller domain.Identity, store domain.Store, id string) (transport.AccountDetailResponse, error) {
	account, err := s.repo.GetByID(ctx, store, id, scopeFor(store, caller))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.AccountDetailResponse{}, apperr.NotFound("account not found")
		}
		return transport.AccountDetailResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load account", err)
	}

	history, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		return transport.AccountDetailResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load history", err)
	}

	return transport.AccountDetailResponse{
		AccountResponse: transport.ToAccountResponse(account),
		StatusHistory:   transport.ToHistoryEntries(history),
	}, nil
}

// List returns the accounts of one store visible to the caller.
func (s *Service) List(ctx context.Context, caller domain.Identity, store domain.Store, req transport.ListAccountsRequest) ([]transport.AccountResponse, error) {
	accounts, err := s.repo.List(ctx, store, scopeFor(store, caller), repository.ListParams{
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
		Search:     req.Search,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list accounts", err)
	}
	return transport.ToAccountResponses(accounts), nil
}

// Delete archives an account: snapshot plus dependents, then removal of
// the live copies. Managers and administrators only.
func (s *Service) Delete(ctx context.Context, caller domain.Identity, store domain.Store, id string) error {
	role := domain.ParseRole(caller.Role())
	if role != domain.RoleAdmin && role != domain.RoleManager {
		return apperr.Forbidden("your role cannot archive accounts")
	}

	account, err := s.loadForWrite(ctx, store, id, caller)
	if err != nil {
		return err
	}

	actor := staffname.Normalize(caller.StaffName())
	if err := s.archiver.ArchiveAccount(ctx, store, id, actor, false); err != nil {
		return err
	}

	s.audit.Record(ctx, actor, caller.Role(), "archive", "account", id, nil)
	s.bus.Publish(ctx, events.LeadArchived{
		BaseEvent:   events.NewBaseEvent(),
		AccountID:   id,
		ContactName: account.ContactName,
		AssignedTo:  account.AssignedTo,
		Automatic:   false,
		Actor:       actor,
	})
	return nil
}

// ListChat returns an account's chat thread.
func (s *Service) ListChat(ctx context.Context, caller domain.Identity, store domain.Store, id string) ([]transport.ChatMessageResponse, error) {
	if _, err := s.repo.GetByID(ctx, store, id, scopeFor(store, caller)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("account not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load account", err)
	}
	messages, err := s.repo.ListChatMessages(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load chat", err)
	}
	return transport.ToChatMessageResponses(messages), nil
}

// AddChat appends one message to an account's chat thread.
func (s *Service) AddChat(ctx context.Context, caller domain.Identity, store domain.Store, id string, req transport.AddChatMessageRequest) (transport.ChatMessageResponse, error) {
	if _, err := s.loadForWrite(ctx, store, id, caller); err != nil {
		return transport.ChatMessageResponse{}, err
	}
	author := staffname.Normalize(caller.StaffName())
	message, err := s.repo.AddChatMessage(ctx, id, author, req.Body)
	if err != nil {
		return transport.ChatMessageResponse{}, apperr.Wrap(apperr.KindInternal, "failed to store message", err)
	}
	return transport.ChatMessageResponse{ID: message.ID, Author: message.Author, Body: message.Body, CreatedAt: message.CreatedAt}, nil
}

// ListInvoices returns a confirmed client's invoices.
func (s *Service) ListInvoices(ctx context.Context, caller domain.Identity, id string) ([]transport.InvoiceResponse, error) {
	if _, err := s.repo.GetByID(ctx, domain.StoreClient, id, domain.ResolveClientScope(caller)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("client not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load client", err)
	}
	invoices, err := s.repo.ListInvoices(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load invoices", err)
	}
	return transport.ToInvoiceResponses(invoices), nil
}

// CreateInvoice adds a billing record to a confirmed client.
func (s *Service) CreateInvoice(ctx context.Context, caller domain.Identity, id string, req transport.CreateInvoiceRequest) (transport.InvoiceResponse, error) {
	role := domain.ParseRole(caller.Role())
	if role != domain.RoleAdmin && role != domain.RoleManager {
		return transport.InvoiceResponse{}, apperr.Forbidden("your role cannot create invoices")
	}
	if _, err := s.loadForWrite(ctx, domain.StoreClient, id, caller); err != nil {
		return transport.InvoiceResponse{}, err
	}

	actor := staffname.Normalize(caller.StaffName())
	invoice, err := s.repo.CreateInvoice(ctx, domain.Invoice{
		AccountID:   id,
		Status:      domain.InvoiceStatusDraft,
		AmountCents: req.AmountCents,
		Description: req.Description,
		CreatedBy:   actor,
	})
	if err != nil {
		return transport.InvoiceResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create invoice", err)
	}

	s.audit.Record(ctx, actor, caller.Role(), "create", "invoice", invoice.ID, map[string]interface{}{"accountId": id})
	responses := transport.ToInvoiceResponses([]domain.Invoice{invoice})
	return responses[0], nil
}

// loadForWrite resolves an account for a mutation. A record the caller
// cannot see fails with an explicit validation error on write paths,
// distinct from a genuinely missing id.
func (s *Service) loadForWrite(ctx context.Context, store domain.Store, id string, caller domain.Identity) (domain.Account, error) {
	account, err := s.repo.GetByID(ctx, store, id, scopeFor(store, caller))
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.Account{}, apperr.Wrap(apperr.KindInternal, "failed to load account", err)
	}
	if _, unscopedErr := s.repo.GetByID(ctx, store, id, domain.ScopeAll()); unscopedErr == nil {
		return domain.Account{}, apperr.Validation("account is outside your scope")
	}
	return domain.Account{}, apperr.NotFound("account not found")
}
