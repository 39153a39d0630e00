// Package service implements case business logic: parent resolution
// against the two account stores, team-boundary enforcement, and
// version-guarded state changes.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	accounts "casedesk_backend/internal/accounts/domain"
	accountsrepo "casedesk_backend/internal/accounts/repository"
	"casedesk_backend/internal/cases/domain"
	"casedesk_backend/internal/cases/repository"
	"casedesk_backend/internal/cases/transport"
	"casedesk_backend/platform/apperr"
	"casedesk_backend/platform/logger"
	"casedesk_backend/platform/staffname"
)

// AccountReader resolves case parents against the lead and client stores.
type AccountReader interface {
	GetByID(ctx context.Context, store accounts.Store, id string, scope accounts.Scope) (accounts.Account, error)
}

// AuditWriter records state-changing actions.
type AuditWriter interface {
	Record(ctx context.Context, actor, role, action, resource, resourceID string, details interface{})
}

type Service struct {
	repo     *repository.Repository
	accounts AccountReader
	audit    AuditWriter
	log      *logger.Logger
}

func New(repo *repository.Repository, accountReader AccountReader, audit AuditWriter, log *logger.Logger) *Service {
	return &Service{repo: repo, accounts: accountReader, audit: audit, log: log}
}

// resolveParent locates the account owning a case across both stores and
// returns it with the case type its store dictates.
func (s *Service) resolveParent(ctx context.Context, accountID string) (accounts.Account, string, error) {
	lead, err := s.accounts.GetByID(ctx, accounts.StoreLead, accountID, accounts.ScopeAll())
	if err == nil {
		return lead, accounts.CaseTypeCustomer, nil
	}
	if !errors.Is(err, accountsrepo.ErrNotFound) {
		return accounts.Account{}, "", apperr.Wrap(apperr.KindInternal, "failed to resolve account", err)
	}

	client, err := s.accounts.GetByID(ctx, accounts.StoreClient, accountID, accounts.ScopeAll())
	if err == nil {
		return client, accounts.CaseTypeClient, nil
	}
	if !errors.Is(err, accountsrepo.ErrNotFound) {
		return accounts.Account{}, "", apperr.Wrap(apperr.KindInternal, "failed to resolve account", err)
	}

	return accounts.Account{}, "", apperr.DependencyMissing("referenced account does not exist")
}

// Create opens a case under an account. The case type follows the store
// owning the parent; the assignee must be on that type's roster.
func (s *Service) Create(ctx context.Context, caller accounts.Identity, req transport.CreateCaseRequest) (transport.CaseResponse, error) {
	parent, caseType, err := s.resolveParent(ctx, req.AccountID)
	if err != nil {
		return transport.CaseResponse{}, err
	}

	// The parent must also be visible to the caller.
	scope := accounts.ResolveCaseScope(caller, caseType)
	if _, err := s.accounts.GetByID(ctx, parent.Store, parent.ID, scope); err != nil {
		if errors.Is(err, accountsrepo.ErrNotFound) {
			return transport.CaseResponse{}, apperr.Validation("account is outside your scope")
		}
		return transport.CaseResponse{}, apperr.Wrap(apperr.KindInternal, "failed to resolve account", err)
	}

	assignee := staffname.Normalize(req.AssignedTo)
	if err := accounts.ValidateCaseAssignment(caseType, assignee); err != nil {
		return transport.CaseResponse{}, err
	}

	actor := staffname.Normalize(caller.StaffName())
	created, err := s.repo.Create(ctx, domain.Case{
		ID:          uuid.New(),
		AccountID:   parent.ID,
		CaseType:    caseType,
		Title:       req.Title,
		Description: req.Description,
		State:       domain.StateOpen,
		AssignedTo:  assignee,
		CreatedBy:   actor,
		Version:     1,
	})
	if err != nil {
		return transport.CaseResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create case", err)
	}

	s.audit.Record(ctx, actor, caller.Role(), "create", "case", created.ID.String(),
		map[string]interface{}{"accountId": parent.ID, "caseType": caseType})
	return transport.ToCaseResponse(created), nil
}

// Get returns one case with its state history.
func (s *Service) Get(ctx context.Context, caller accounts.Identity, id uuid.UUID) (transport.CaseDetailResponse, error) {
	c, err := s.loadScoped(ctx, caller, id)
	if err != nil {
		return transport.CaseDetailResponse{}, err
	}

	history, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		return transport.CaseDetailResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load case history", err)
	}
	return transport.CaseDetailResponse{
		CaseResponse: transport.ToCaseResponse(c),
		History:      transport.ToHistoryEntries(history),
	}, nil
}

// List returns cases visible to the caller. Roles pinned to one side of
// the confirmation boundary only ever see that side's case type.
func (s *Service) List(ctx context.Context, caller accounts.Identity, req transport.ListCasesRequest) ([]transport.CaseResponse, error) {
	params := repository.ListParams{
		AccountID:  req.AccountID,
		CaseType:   req.CaseType,
		State:      req.State,
		AssignedTo: req.AssignedTo,
		Limit:      req.Limit,
		Offset:     req.Offset,
	}

	switch accounts.ParseRole(caller.Role()) {
	case accounts.RoleIntake:
		params.CaseType = accounts.CaseTypeCustomer
	case accounts.RoleConsultant:
		params.CaseType = accounts.CaseTypeClient
	}

	// Admin and manager scopes are identical on both sides of the
	// confirmation boundary; intake and consultants are pinned above.
	cases, err := s.repo.List(ctx, accounts.ResolveCaseScope(caller, params.CaseType), params)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list cases", err)
	}
	return transport.ToCaseResponses(cases), nil
}

// Update mutates a case under its observed version. State changes append
// a history entry; reassignment re-validates the team boundary.
func (s *Service) Update(ctx context.Context, caller accounts.Identity, id uuid.UUID, req transport.UpdateCaseRequest) (transport.CaseResponse, error) {
	current, err := s.loadForWrite(ctx, caller, id)
	if err != nil {
		return transport.CaseResponse{}, err
	}

	params := repository.UpdateParams{
		Title:           current.Title,
		Description:     current.Description,
		State:           current.State,
		AssignedTo:      current.AssignedTo,
		ExpectedVersion: req.Version,
	}
	if req.Title != nil {
		params.Title = *req.Title
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.State != nil {
		if !domain.IsKnownState(*req.State) {
			return transport.CaseResponse{}, apperr.Validation("unknown case state")
		}
		params.State = *req.State
	}
	if req.AssignedTo != nil {
		assignee := staffname.Normalize(*req.AssignedTo)
		if err := accounts.ValidateCaseAssignment(current.CaseType, assignee); err != nil {
			return transport.CaseResponse{}, err
		}
		params.AssignedTo = assignee
	}

	actor := staffname.Normalize(caller.StaffName())
	stateChanged := params.State != current.State

	updated, err := s.repo.Update(ctx, id, params, stateChanged, actor)
	if errors.Is(err, repository.ErrVersionConflict) {
		return transport.CaseResponse{}, apperr.VersionConflict(transport.ToCaseResponse(updated))
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.CaseResponse{}, apperr.NotFound("case not found")
		}
		return transport.CaseResponse{}, apperr.Wrap(apperr.KindInternal, "failed to update case", err)
	}

	action := "update"
	var details interface{}
	if stateChanged {
		action = "state_change"
		details = map[string]interface{}{"from": current.State, "to": params.State}
	}
	s.audit.Record(ctx, actor, caller.Role(), action, "case", id.String(), details)
	return transport.ToCaseResponse(updated), nil
}

// Delete removes a case with its dependents.
func (s *Service) Delete(ctx context.Context, caller accounts.Identity, id uuid.UUID) error {
	role := accounts.ParseRole(caller.Role())
	if role != accounts.RoleAdmin && role != accounts.RoleManager {
		return apperr.Forbidden("your role cannot delete cases")
	}
	if _, err := s.loadForWrite(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete case", err)
	}
	actor := staffname.Normalize(caller.StaffName())
	s.audit.Record(ctx, actor, caller.Role(), "delete", "case", id.String(), nil)
	return nil
}

// ListNotes returns a case's notes.
func (s *Service) ListNotes(ctx context.Context, caller accounts.Identity, id uuid.UUID) ([]transport.NoteResponse, error) {
	if _, err := s.loadScoped(ctx, caller, id); err != nil {
		return nil, err
	}
	notes, err := s.repo.ListNotes(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load notes", err)
	}
	return transport.ToNoteResponses(notes), nil
}

// AddNote appends a note to a case.
func (s *Service) AddNote(ctx context.Context, caller accounts.Identity, id uuid.UUID, req transport.AddNoteRequest) (transport.NoteResponse, error) {
	if _, err := s.loadForWrite(ctx, caller, id); err != nil {
		return transport.NoteResponse{}, err
	}
	author := staffname.Normalize(caller.StaffName())
	note, err := s.repo.AddNote(ctx, id, author, req.Body)
	if err != nil {
		return transport.NoteResponse{}, apperr.Wrap(apperr.KindInternal, "failed to store note", err)
	}
	return transport.NoteResponse{ID: note.ID.String(), Author: note.Author, Body: note.Body, CreatedAt: note.CreatedAt}, nil
}

// ListTasks returns a case's tasks.
func (s *Service) ListTasks(ctx context.Context, caller accounts.Identity, id uuid.UUID) ([]transport.TaskResponse, error) {
	if _, err := s.loadScoped(ctx, caller, id); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListTasks(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load tasks", err)
	}
	return transport.ToTaskResponses(tasks), nil
}

// AddTask creates a task on a case.
func (s *Service) AddTask(ctx context.Context, caller accounts.Identity, id uuid.UUID, req transport.AddTaskRequest) (transport.TaskResponse, error) {
	if _, err := s.loadForWrite(ctx, caller, id); err != nil {
		return transport.TaskResponse{}, err
	}
	actor := staffname.Normalize(caller.StaffName())
	task, err := s.repo.AddTask(ctx, id, req.Title, req.DueAt, actor)
	if err != nil {
		return transport.TaskResponse{}, apperr.Wrap(apperr.KindInternal, "failed to store task", err)
	}
	responses := transport.ToTaskResponses([]domain.Task{task})
	return responses[0], nil
}

// SetTaskDone toggles a task's completion flag.
func (s *Service) SetTaskDone(ctx context.Context, caller accounts.Identity, caseID, taskID uuid.UUID, done bool) error {
	if _, err := s.loadForWrite(ctx, caller, caseID); err != nil {
		return err
	}
	if err := s.repo.SetTaskDone(ctx, taskID, done); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("task not found")
		}
		return apperr.Wrap(apperr.KindInternal, "failed to update task", err)
	}
	return nil
}

// loadScoped resolves a case for a read path. Scope misses read as not
// found.
func (s *Service) loadScoped(ctx context.Context, caller accounts.Identity, id uuid.UUID) (domain.Case, error) {
	c, err := s.repo.GetByID(ctx, id, accounts.ScopeAll())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Case{}, apperr.NotFound("case not found")
		}
		return domain.Case{}, apperr.Wrap(apperr.KindInternal, "failed to load case", err)
	}
	scoped, err := s.repo.GetByID(ctx, id, accounts.ResolveCaseScope(caller, c.CaseType))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Case{}, apperr.NotFound("case not found")
		}
		return domain.Case{}, apperr.Wrap(apperr.KindInternal, "failed to load case", err)
	}
	return scoped, nil
}

// loadForWrite resolves a case for a mutation. A case the caller cannot
// see fails with an explicit validation error, distinct from a missing id.
func (s *Service) loadForWrite(ctx context.Context, caller accounts.Identity, id uuid.UUID) (domain.Case, error) {
	c, err := s.repo.GetByID(ctx, id, accounts.ScopeAll())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Case{}, apperr.NotFound("case not found")
		}
		return domain.Case{}, apperr.Wrap(apperr.KindInternal, "failed to load case", err)
	}
	if _, err := s.repo.GetByID(ctx, id, accounts.ResolveCaseScope(caller, c.CaseType)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Case{}, apperr.Validation("case is outside your scope")
		}
		return domain.Case{}, apperr.Wrap(apperr.KindInternal, "failed to load case", err)
	}
	return c, nil
}
