// Package auth provides the authentication bounded context module.
package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"casedesk_backend/internal/auth/handler"
	"casedesk_backend/internal/auth/repository"
	"casedesk_backend/internal/auth/service"
	"casedesk_backend/internal/auth/throttle"
	apphttp "casedesk_backend/internal/http"
	"casedesk_backend/platform/config"
	"casedesk_backend/platform/logger"
	"casedesk_backend/platform/validator"
)

// Config is the configuration surface the auth module needs.
type Config interface {
	config.AuthServiceConfig
	config.ThrottleConfig
}

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler  *handler.Handler
	service  *service.Service
	throttle *throttle.LoginThrottle
}

// NewModule creates and initializes the auth module. The login throttle is
// disabled when no Redis URL is configured.
func NewModule(pool *pgxpool.Pool, cfg Config, val *validator.Validator, log *logger.Logger) (*Module, error) {
	th, err := throttle.New(cfg, log)
	if err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	svc := service.New(repo, cfg, th, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, throttle: th}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Close releases the throttle's Redis connection.
func (m *Module) Close() error {
	return m.throttle.Close()
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	authGroup.POST("/login", m.handler.Login)
	authGroup.POST("/refresh", m.handler.Refresh)

	ctx.Protected.GET("/users/me", m.handler.Me)
	ctx.Protected.GET("/users", m.handler.ListUsers)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
