// Package handler exposes the admin-only archive endpoints.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"casedesk_backend/internal/archive/service"
	"casedesk_backend/platform/apperr"
	"casedesk_backend/platform/httpkit"
)

// Handler handles HTTP requests for the archive.
type Handler struct {
	svc *service.Service
}

// New creates a new archive handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// List returns all archive entries without snapshots.
// GET /api/v1/admin/archive
func (h *Handler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get returns one archive entry including its snapshot.
// GET /api/v1/admin/archive/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := archiveID(c)
	if !ok {
		return
	}
	result, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Restore re-inserts an archived account and its dependents.
// POST /api/v1/admin/archive/:id/restore
func (h *Handler) Restore(c *gin.Context) {
	id, ok := archiveID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	result, err := h.svc.Restore(c.Request.Context(), id, identity.StaffName())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func archiveID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid archive id"))
		return uuid.Nil, false
	}
	return id, true
}
