// Package handler exposes the admin-only audit log endpoint.
package handler

import (
	"github.com/gin-gonic/gin"

	"casedesk_backend/internal/audit/repository"
	"casedesk_backend/internal/audit/service"
	"casedesk_backend/platform/apperr"
	"casedesk_backend/platform/httpkit"
)

// Handler handles HTTP requests for the audit log.
type Handler struct {
	svc *service.Service
}

// New creates a new audit handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

type listRequest struct {
	Actor      string `form:"actor"`
	Action     string `form:"action"`
	Resource   string `form:"resource"`
	ResourceID string `form:"resourceId"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}

// List returns audit entries newest first.
// GET /api/v1/admin/audit
func (h *Handler) List(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid query parameters"))
		return
	}

	result, err := h.svc.List(c.Request.Context(), repository.ListParams{
		Actor:      req.Actor,
		Action:     req.Action,
		Resource:   req.Resource,
		ResourceID: req.ResourceID,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
