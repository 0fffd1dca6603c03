// Package handler handles HTTP requests for lead management.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadpulse_backend/internal/leads/service"
	"leadpulse_backend/internal/leads/transport"
	"leadpulse_backend/platform/httpkit"
	"leadpulse_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead ID"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create stores a new lead.
// POST /api/v1/leads
func (h *Handler) Create(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.FromLead(lead))
}

// List returns all leads for the tenant.
// GET /api/v1/leads
func (h *Handler) List(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}
	leads, err := h.svc.List(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromLeads(leads))
}

// Get returns a single lead.
// GET /api/v1/leads/:id
func (h *Handler) Get(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}
	lead, err := h.svc.Get(c.Request.Context(), leadID, tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromLead(lead))
}

// Update applies a partial update to a lead.
// PATCH /api/v1/leads/:id
func (h *Handler) Update(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}
	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), leadID, tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromLead(lead))
}

// Delete removes a lead.
// DELETE /api/v1/leads/:id
func (h *Handler) Delete(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), leadID, tenantID); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}
