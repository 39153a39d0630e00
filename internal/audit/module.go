// Package audit provides the append-only audit trail: every mutating
// operation records who did what to which resource.
package audit

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"casedesk_backend/internal/audit/handler"
	"casedesk_backend/internal/audit/repository"
	"casedesk_backend/internal/audit/service"
	apphttp "casedesk_backend/internal/http"
	"casedesk_backend/platform/logger"
)

// Module is the audit bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the audit module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "audit"
}

// Service returns the audit recorder for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the admin-only audit routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/audit", m.handler.List)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
