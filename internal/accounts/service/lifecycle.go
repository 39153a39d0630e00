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
	"casedesk_backend/platform/phone"
	"casedesk_backend/platform/staffname"
)

// Update applies a version-guarded mutation to an account. A Status value
// that differs from the stored one requests a lifecycle transition;
// confirming and demoting route through the store migration. Field-level
// dispatch events (proposal/contract sent set for the first time)
// auto-advance the status with a system-attributed history entry.
func (s *Service) Update(ctx context.Context, caller domain.Identity, store domain.Store, id string, req transport.UpdateAccountRequest) (transport.AccountResponse, error) {
	current, err := s.loadForWrite(ctx, store, id, caller)
	if err != nil {
		return transport.AccountResponse{}, err
	}

	if req.Status != nil && *req.Status != current.Status {
		target := *req.Status
		if target == domain.StatusClient {
			return s.confirm(ctx, caller, current, req)
		}
		if current.Status == domain.StatusClient {
			return s.demote(ctx, caller, current, target, req.Version)
		}
	}

	return s.applyUpdate(ctx, caller, current, req)
}

// applyUpdate handles all mutations that stay within one store.
func (s *Service) applyUpdate(ctx context.Context, caller domain.Identity, current domain.Account, req transport.UpdateAccountRequest) (transport.AccountResponse, error) {
	params := mergeParams(current, req)
	actor := staffname.Normalize(caller.StaffName())
	now := time.Now()

	if params.AssignedTo != current.AssignedTo && params.AssignedTo != "" {
		if err := domain.ValidateCaseAssignment(domain.CaseTypeFor(current.Store), params.AssignedTo); err != nil {
			return transport.AccountResponse{}, err
		}
	}

	explicitChange := params.Status != current.Status
	if explicitChange {
		if err := domain.ValidateTransition(current.Status, params.Status, params.AssignedTo); err != nil {
			return transport.AccountResponse{}, err
		}
	}

	// First-time dispatch timestamps advance the status as a side effect.
	// The automatic step is attributed to the system actor, not the caller.
	proposalDispatched := current.ProposalSentAt == nil && params.ProposalSentAt != nil
	contractDispatched := current.ContractSentAt == nil && params.ContractSentAt != nil

	autoStatus := ""
	if proposalDispatched && params.Status == domain.StatusSendProposal {
		autoStatus = domain.StatusWaitingApproval
	}
	if contractDispatched && params.Status == domain.StatusSendContract {
		autoStatus = domain.StatusWaitingAcceptance
	}
	if autoStatus != "" {
		params.Status = autoStatus
	}

	updated, err := s.repo.Update(ctx, current.Store, current.ID, params)
	if errors.Is(err, repository.ErrVersionConflict) {
		return transport.AccountResponse{}, apperr.VersionConflict(transport.ToAccountResponse(updated))
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.AccountResponse{}, apperr.NotFound("account not found")
		}
		return transport.AccountResponse{}, apperr.Wrap(apperr.KindInternal, "failed to update account", err)
	}

	if explicitChange {
		s.recordStatusChange(ctx, updated, current.Status, mergedExplicitStatus(current, req), actor, caller.Role(), now)
	}
	if autoStatus != "" {
		s.recordStatusChange(ctx, updated, mergedExplicitStatus(current, req), autoStatus, domain.SystemActor, "system", now)
	}
	if !explicitChange && autoStatus == "" {
		s.audit.Record(ctx, actor, caller.Role(), "update", "account", updated.ID, nil)
	}

	if proposalDispatched {
		s.bus.Publish(ctx, events.ProposalDispatched{
			BaseEvent:   events.NewBaseEvent(),
			AccountID:   updated.ID,
			ContactName: updated.ContactName,
			Email:       updated.Email,
			AssignedTo:  updated.AssignedTo,
		})
	}
	if contractDispatched {
		s.bus.Publish(ctx, events.ContractDispatched{
			BaseEvent:   events.NewBaseEvent(),
			AccountID:   updated.ID,
			ContactName: updated.ContactName,
			Email:       updated.Email,
			AssignedTo:  updated.AssignedTo,
		})
	}

	return transport.ToAccountResponse(updated), nil
}

// confirm migrates a lead into the confirmed-client store. The whole move
// runs under one version check; any pending field edits are applied first,
// then the move re-reads the lead under its new version.
func (s *Service) confirm(ctx context.Context, caller domain.Identity, current domain.Account, req transport.UpdateAccountRequest) (transport.AccountResponse, error) {
	role := domain.ParseRole(caller.Role())
	if !role.CanMigrate(false) {
		return transport.AccountResponse{}, apperr.Forbidden("your role cannot confirm clients")
	}
	if current.Store != domain.StoreLead {
		return transport.AccountResponse{}, apperr.IllegalTransition("account is already confirmed")
	}

	params := mergeParams(current, req)
	params.Status = current.Status
	if err := domain.ValidateTransition(current.Status, domain.StatusClient, params.AssignedTo); err != nil {
		return transport.AccountResponse{}, err
	}
	// The confirmed client is handed to the client-lawyer team as part of
	// the move.
	if err := domain.ValidateCaseAssignment(domain.CaseTypeClient, params.AssignedTo); err != nil {
		return transport.AccountResponse{}, err
	}

	expectedVersion := req.Version
	if pendingFieldEdits(current, params) {
		updated, err := s.repo.Update(ctx, domain.StoreLead, current.ID, params)
		if errors.Is(err, repository.ErrVersionConflict) {
			return transport.AccountResponse{}, apperr.VersionConflict(transport.ToAccountResponse(updated))
		}
		if err != nil {
			return transport.AccountResponse{}, apperr.Wrap(apperr.KindInternal, "failed to update lead", err)
		}
		expectedVersion = updated.Version
	}

	actor := staffname.Normalize(caller.StaffName())
	now := time.Now()
	client, err := s.repo.MoveToClients(ctx, current.ID, expectedVersion, actor, now)
	if errors.Is(err, repository.ErrVersionConflict) {
		return transport.AccountResponse{}, apperr.VersionConflict(transport.ToAccountResponse(client))
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.AccountResponse{}, apperr.NotFound("account not found")
		}
		return transport.AccountResponse{}, apperr.Wrap(apperr.KindInternal, "failed to confirm client", err)
	}

	s.audit.Record(ctx, actor, caller.Role(), "confirm", "account", client.ID,
		map[string]interface{}{"from": current.Status, "to": domain.StatusClient})
	s.bus.Publish(ctx, events.StatusChanged{
		BaseEvent: events.NewBaseEvent(), AccountID: client.ID,
		FromStatus: current.Status, ToStatus: domain.StatusClient,
		Actor: actor, AssignedTo: client.AssignedTo,
	})
	s.bus.Publish(ctx, events.AccountConfirmed{
		BaseEvent: events.NewBaseEvent(), AccountID: client.ID,
		ContactName: client.ContactName, AssignedTo: client.AssignedTo, Actor: actor,
	})

	return transport.ToAccountResponse(client), nil
}

// demote moves a confirmed client back into the lead store. Administrator
// only; ownership is reset as part of the move.
func (s *Service) demote(ctx context.Context, caller domain.Identity, current domain.Account, target string, version int) (transport.AccountResponse, error) {
	role := domain.ParseRole(caller.Role())
	if !role.CanMigrate(true) {
		return transport.AccountResponse{}, apperr.Forbidden("only administrators can demote a client")
	}
	if !domain.IsKnownStatus(target) || target == domain.StatusClient {
		return transport.AccountResponse{}, apperr.IllegalTransition("invalid demotion target status")
	}

	actor := staffname.Normalize(caller.StaffName())
	now := time.Now()
	lead, err := s.repo.MoveToLeads(ctx, current.ID, target, version, actor, now)
	if errors.Is(err, repository.ErrVersionConflict) {
		return transport.AccountResponse{}, apperr.VersionConflict(transport.ToAccountResponse(lead))
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.AccountResponse{}, apperr.NotFound("account not found")
		}
		return transport.AccountResponse{}, apperr.Wrap(apperr.KindInternal, "failed to demote client", err)
	}

	s.audit.Record(ctx, actor, caller.Role(), "demote", "account", lead.ID,
		map[string]interface{}{"from": domain.StatusClient, "to": target})
	s.bus.Publish(ctx, events.StatusChanged{
		BaseEvent: events.NewBaseEvent(), AccountID: lead.ID,
		FromStatus: domain.StatusClient, ToStatus: target, Actor: actor,
	})
	s.bus.Publish(ctx, events.AccountDemoted{
		BaseEvent: events.NewBaseEvent(), AccountID: lead.ID, ToStatus: target, Actor: actor,
	})

	return transport.ToAccountResponse(lead), nil
}

func (s *Service) recordStatusChange(ctx context.Context, account domain.Account, from, to, actor, role string, at time.Time) {
	if err := s.repo.AppendHistory(ctx, account.ID, to, actor, at); err != nil {
		s.log.Error("failed to append status history", "accountId", account.ID, "error", err)
	}
	s.audit.Record(ctx, actor, role, "status_change", "account", account.ID,
		map[string]interface{}{"from": from, "to": to})
	s.bus.Publish(ctx, events.StatusChanged{
		BaseEvent: events.NewBaseEvent(), AccountID: account.ID,
		FromStatus: from, ToStatus: to, Actor: actor, AssignedTo: account.AssignedTo,
	})
}

// mergeParams overlays the request's present fields onto the current
// record. Names and phone numbers are normalized here, at write time.
func mergeParams(current domain.Account, req transport.UpdateAccountRequest) repository.UpdateParams {
	params := repository.UpdateParams{
		ContactName:       current.ContactName,
		Company:           current.Company,
		Email:             current.Email,
		Phone:             current.Phone,
		Status:            current.Status,
		AssignedTo:        current.AssignedTo,
		Notes:             current.Notes,
		RetainerFeeCents:  current.RetainerFeeCents,
		HourlyBudgetCents: current.HourlyBudgetCents,
		FilingFeeCents:    current.FilingFeeCents,
		ProposalSentAt:    current.ProposalSentAt,
		ContractSentAt:    current.ContractSentAt,
		FollowUpAt:        current.FollowUpAt,
		ExpectedVersion:   req.Version,
	}
	if req.ContactName != nil {
		params.ContactName = *req.ContactName
	}
	if req.Company != nil {
		params.Company = *req.Company
	}
	if req.Email != nil {
		params.Email = *req.Email
	}
	if req.Phone != nil {
		params.Phone = phone.NormalizeE164(*req.Phone)
	}
	if req.Status != nil {
		params.Status = *req.Status
	}
	if req.AssignedTo != nil {
		params.AssignedTo = staffname.Normalize(*req.AssignedTo)
	}
	if req.Notes != nil {
		params.Notes = *req.Notes
	}
	if req.RetainerFeeCents != nil {
		params.RetainerFeeCents = *req.RetainerFeeCents
	}
	if req.HourlyBudgetCents != nil {
		params.HourlyBudgetCents = *req.HourlyBudgetCents
	}
	if req.FilingFeeCents != nil {
		params.FilingFeeCents = *req.FilingFeeCents
	}
	if req.ProposalSentAt != nil && current.ProposalSentAt == nil {
		params.ProposalSentAt = req.ProposalSentAt
	}
	if req.ContractSentAt != nil && current.ContractSentAt == nil {
		params.ContractSentAt = req.ContractSentAt
	}
	if req.FollowUpAt != nil {
		params.FollowUpAt = req.FollowUpAt
	}
	return params
}

// mergedExplicitStatus is the status the caller explicitly requested, or
// the current one when the request leaves status unchanged.
func mergedExplicitStatus(current domain.Account, req transport.UpdateAccountRequest) string {
	if req.Status != nil {
		return *req.Status
	}
	return current.Status
}

func pendingFieldEdits(current domain.Account, params repository.UpdateParams) bool {
	return params.ContactName != current.ContactName ||
		params.Company != current.Company ||
		params.Email != current.Email ||
		params.Phone != current.Phone ||
		params.AssignedTo != current.AssignedTo ||
		params.Notes != current.Notes ||
		params.RetainerFeeCents != current.RetainerFeeCents ||
		params.HourlyBudgetCents != current.HourlyBudgetCents ||
		params.FilingFeeCents != current.FilingFeeCents
}
