// Package handler handles HTTP requests for WhatsApp outreach.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadpulse_backend/internal/engage/service"
	"leadpulse_backend/internal/engage/transport"
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

// Send delivers a message to a set of leads.
// POST /api/v1/whatsapp/send
func (h *Handler) Send(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}
	var req transport.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.Send(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// History returns the message log for one lead.
// GET /api/v1/leads/:id/messages
func (h *Handler) History(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}

	messages, err := h.svc.History(c.Request.Context(), tenantID, leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	type messageResponse struct {
		ID        uuid.UUID `json:"id"`
		Phone     string    `json:"phone"`
		Body      string    `json:"body"`
		Status    string    `json:"status"`
		Error     *string   `json:"error,omitempty"`
		CreatedAt string    `json:"createdAt"`
	}
	items := make([]messageResponse, 0, len(messages))
	for _, msg := range messages {
		items = append(items, messageResponse{
			ID:        msg.ID,
			Phone:     msg.Phone,
			Body:      msg.Body,
			Status:    msg.Status,
			Error:     msg.Error,
			CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	httpkit.OK(c, gin.H{"items": items, "total": len(items)})
}
