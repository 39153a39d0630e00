// Package handler exposes the cases HTTP surface.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"casedesk_backend/internal/cases/service"
	"casedesk_backend/internal/cases/transport"
	"casedesk_backend/platform/httpkit"
	"casedesk_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid case id"
)

// Handler handles HTTP requests for cases.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new cases handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create opens a new case under an account.
// POST /api/v1/cases
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), identity, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// List returns cases visible to the caller.
// GET /api/v1/cases
func (h *Handler) List(c *gin.Context) {
	var req transport.ListCasesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.List(c.Request.Context(), identity, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get returns one case with its state history.
// GET /api/v1/cases/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), identity, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update mutates a case under its observed version.
// PUT /api/v1/cases/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}
	var req transport.UpdateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), identity, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes a case with its dependents.
// DELETE /api/v1/cases/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity, id); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// ListNotes returns a case's notes.
// GET /api/v1/cases/:id/notes
func (h *Handler) ListNotes(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ListNotes(c.Request.Context(), identity, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AddNote appends a note to a case.
// POST /api/v1/cases/:id/notes
func (h *Handler) AddNote(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}
	var req transport.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.AddNote(c.Request.Context(), identity, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// ListTasks returns a case's tasks.
// GET /api/v1/cases/:id/tasks
func (h *Handler) ListTasks(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ListTasks(c.Request.Context(), identity, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AddTask creates a task on a case.
// POST /api/v1/cases/:id/tasks
func (h *Handler) AddTask(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}
	var req transport.AddTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.AddTask(c.Request.Context(), identity, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// SetTaskDone toggles a task's completion flag.
// PUT /api/v1/cases/:id/tasks/:taskId
func (h *Handler) SetTaskDone(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid task id", nil)
		return
	}
	var req transport.SetTaskDoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if err := h.svc.SetTaskDone(c.Request.Context(), identity, id, taskID, req.Done); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) caseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}
