// Package handler exposes the accounts HTTP surface: the lead store, the
// confirmed-client store, chat threads, and invoices.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"casedesk_backend/internal/accounts/domain"
	"casedesk_backend/internal/accounts/service"
	"casedesk_backend/internal/accounts/transport"
	"casedesk_backend/platform/httpkit"
	"casedesk_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for accounts.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new accounts handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// CreateLead creates a new lead.
// POST /api/v1/leads
func (h *Handler) CreateLead(c *gin.Context) {
	var req transport.CreateAccountRequest
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

// ListLeads lists leads visible to the caller.
// GET /api/v1/leads
func (h *Handler) ListLeads(c *gin.Context) { h.list(c, domain.StoreLead) }

// ListClients lists confirmed clients visible to the caller.
// GET /api/v1/clients
func (h *Handler) ListClients(c *gin.Context) { h.list(c, domain.StoreClient) }

func (h *Handler) list(c *gin.Context, store domain.Store) {
	var req transport.ListAccountsRequest
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

	result, err := h.svc.List(c.Request.Context(), identity, store, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetLead returns one lead with its lifecycle history.
// GET /api/v1/leads/:id
func (h *Handler) GetLead(c *gin.Context) { h.get(c, domain.StoreLead) }

// GetClient returns one confirmed client with its lifecycle history.
// GET /api/v1/clients/:id
func (h *Handler) GetClient(c *gin.Context) { h.get(c, domain.StoreClient) }

func (h *Handler) get(c *gin.Context, store domain.Store) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	result, err := h.svc.Get(c.Request.Context(), identity, store, c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateLead mutates a lead, including lifecycle transitions. Confirming a
// lead returns the record from the client store.
// PUT /api/v1/leads/:id
func (h *Handler) UpdateLead(c *gin.Context) { h.update(c, domain.StoreLead) }

// UpdateClient mutates a confirmed client; demotion is administrator-only.
// PUT /api/v1/clients/:id
func (h *Handler) UpdateClient(c *gin.Context) { h.update(c, domain.StoreClient) }

func (h *Handler) update(c *gin.Context, store domain.Store) {
	var req transport.UpdateAccountRequest
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

	result, err := h.svc.Update(c.Request.Context(), identity, store, c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteLead archives a lead with all its dependents.
// DELETE /api/v1/leads/:id
func (h *Handler) DeleteLead(c *gin.Context) { h.delete(c, domain.StoreLead) }

// DeleteClient archives a confirmed client with all its dependents.
// DELETE /api/v1/clients/:id
func (h *Handler) DeleteClient(c *gin.Context) { h.delete(c, domain.StoreClient) }

func (h *Handler) delete(c *gin.Context, store domain.Store) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), identity, store, c.Param("id")); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// ListLeadChat returns a lead's chat thread.
// GET /api/v1/leads/:id/chat
func (h *Handler) ListLeadChat(c *gin.Context) { h.listChat(c, domain.StoreLead) }

// ListClientChat returns a client's chat thread.
// GET /api/v1/clients/:id/chat
func (h *Handler) ListClientChat(c *gin.Context) { h.listChat(c, domain.StoreClient) }

func (h *Handler) listChat(c *gin.Context, store domain.Store) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	result, err := h.svc.ListChat(c.Request.Context(), identity, store, c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AddLeadChat appends a message to a lead's chat thread.
// POST /api/v1/leads/:id/chat
func (h *Handler) AddLeadChat(c *gin.Context) { h.addChat(c, domain.StoreLead) }

// AddClientChat appends a message to a client's chat thread.
// POST /api/v1/clients/:id/chat
func (h *Handler) AddClientChat(c *gin.Context) { h.addChat(c, domain.StoreClient) }

func (h *Handler) addChat(c *gin.Context, store domain.Store) {
	var req transport.AddChatMessageRequest
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

	result, err := h.svc.AddChat(c.Request.Context(), identity, store, c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// ListInvoices returns a confirmed client's invoices.
// GET /api/v1/clients/:id/invoices
func (h *Handler) ListInvoices(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	result, err := h.svc.ListInvoices(c.Request.Context(), identity, c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateInvoice adds a billing record to a confirmed client.
// POST /api/v1/clients/:id/invoices
func (h *Handler) CreateInvoice(c *gin.Context) {
	var req transport.CreateInvoiceRequest
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

	result, err := h.svc.CreateInvoice(c.Request.Context(), identity, c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}
