// Package cases provides the cases bounded context module.
package cases

import (
	"casedesk_backend/internal/cases/handler"
	"casedesk_backend/internal/cases/repository"
	"casedesk_backend/internal/cases/service"
	apphttp "casedesk_backend/internal/http"
	"casedesk_backend/platform/logger"
	"casedesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the cases bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the cases module.
func NewModule(pool *pgxpool.Pool, accountReader service.AccountReader, audit service.AuditWriter, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, accountReader, audit, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "cases"
}

// RegisterRoutes mounts case routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	cases := ctx.Protected.Group("/cases")
	cases.POST("", m.handler.Create)
	cases.GET("", m.handler.List)
	cases.GET("/:id", m.handler.Get)
	cases.PUT("/:id", m.handler.Update)
	cases.DELETE("/:id", m.handler.Delete)
	cases.GET("/:id/notes", m.handler.ListNotes)
	cases.POST("/:id/notes", m.handler.AddNote)
	cases.GET("/:id/tasks", m.handler.ListTasks)
	cases.POST("/:id/tasks", m.handler.AddTask)
	cases.PUT("/:id/tasks/:taskId", m.handler.SetTaskDone)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
