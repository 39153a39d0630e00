// Package archive provides the archive bounded context: snapshotting
// deleted accounts, the admin browse/restore surface, and the optional
// object storage export.
package archive

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"casedesk_backend/internal/archive/handler"
	"casedesk_backend/internal/archive/repository"
	"casedesk_backend/internal/archive/service"
	apphttp "casedesk_backend/internal/http"
	"casedesk_backend/platform/logger"
)

// Module is the archive bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the archive module. The exporter may
// be nil when snapshot export is not configured.
func NewModule(pool *pgxpool.Pool, audit service.AuditWriter, exporter service.Exporter, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, audit, exporter, log)
	h := handler.New(svc)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "archive"
}

// Service returns the archive service so other modules can archive
// accounts through it.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the admin-only archive routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	archive := ctx.Admin.Group("/archive")
	{
		archive.GET("", m.handler.List)
		archive.GET("/:id", m.handler.Get)
		archive.POST("/:id/restore", m.handler.Restore)
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
