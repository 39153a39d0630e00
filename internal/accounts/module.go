// Package accounts provides the lead/client bounded context module.
package accounts

import (
	"casedesk_backend/internal/accounts/handler"
	"casedesk_backend/internal/accounts/repository"
	"casedesk_backend/internal/accounts/service"
	"casedesk_backend/internal/events"
	apphttp "casedesk_backend/internal/http"
	"casedesk_backend/platform/logger"
	"casedesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the accounts bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the accounts module.
func NewModule(pool *pgxpool.Pool, audit service.AuditWriter, archiver service.Archiver, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, audit, archiver, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "accounts"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for other modules that read accounts,
// notably the escalation worker.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts account routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leads := ctx.Protected.Group("/leads")
	leads.POST("", m.handler.CreateLead)
	leads.GET("", m.handler.ListLeads)
	leads.GET("/:id", m.handler.GetLead)
	leads.PUT("/:id", m.handler.UpdateLead)
	leads.DELETE("/:id", m.handler.DeleteLead)
	leads.GET("/:id/chat", m.handler.ListLeadChat)
	leads.POST("/:id/chat", m.handler.AddLeadChat)

	clients := ctx.Protected.Group("/clients")
	clients.GET("", m.handler.ListClients)
	clients.GET("/:id", m.handler.GetClient)
	clients.PUT("/:id", m.handler.UpdateClient)
	clients.DELETE("/:id", m.handler.DeleteClient)
	clients.GET("/:id/chat", m.handler.ListClientChat)
	clients.POST("/:id/chat", m.handler.AddClientChat)
	clients.GET("/:id/invoices", m.handler.ListInvoices)
	clients.POST("/:id/invoices", m.handler.CreateInvoice)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
