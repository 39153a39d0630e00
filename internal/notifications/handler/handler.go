// Package handler exposes the notifications read endpoint.
package handler

import (
	"github.com/gin-gonic/gin"

	"casedesk_backend/internal/notifications/service"
	"casedesk_backend/platform/httpkit"
)

// Handler handles HTTP requests for notifications.
type Handler struct {
	svc *service.Service
}

// New creates a new notifications handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// List returns the caller's visible notifications after a synchronous
// escalation refresh.
// GET /api/v1/notifications
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	result, err := h.svc.List(c.Request.Context(), identity)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
