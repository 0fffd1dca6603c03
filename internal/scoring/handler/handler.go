// Package handler handles HTTP requests for lead scoring.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadpulse_backend/internal/scheduler"
	"leadpulse_backend/internal/scoring/engine"
	"leadpulse_backend/internal/scoring/service"
	"leadpulse_backend/internal/scoring/transport"
	"leadpulse_backend/platform/apperr"
	"leadpulse_backend/platform/httpkit"
	"leadpulse_backend/platform/validator"
)

// BatchEnqueuer hands a tenant-wide scoring run to the background worker.
// Satisfied by *scheduler.Client.
type BatchEnqueuer interface {
	EnqueueScoringBatch(ctx context.Context, payload scheduler.ScoringBatchPayload, runAt time.Time) error
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead ID"
)

type Handler struct {
	svc     *service.Service
	enqueue BatchEnqueuer
	val     *validator.Validator
	loc     *time.Location
}

// New builds the handler. A nil enqueue runs tenant-wide scoring inline
// instead of handing it to the background worker.
func New(svc *service.Service, enqueue BatchEnqueuer, val *validator.Validator, loc *time.Location) *Handler {
	return &Handler{svc: svc, enqueue: enqueue, val: val, loc: loc}
}

// Score scores a single caller-supplied lead profile.
// POST /api/v1/score
func (h *Handler) Score(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}
	var req transport.LeadPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ScoreLead(c.Request.Context(), req.ToLead(tenantID))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromResult(result, h.loc))
}

// ScoreBatch scores a collection of caller-supplied leads and returns a
// partial-success outcome.
// POST /api/v1/score-batch
func (h *Handler) ScoreBatch(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}
	var req transport.ScoreBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	leads := make([]engine.BatchLead, 0, len(req.Leads))
	for _, item := range req.Leads {
		leads = append(leads, engine.BatchLead{
			Lead:          item.ToLead(tenantID),
			AlreadyScored: item.AlreadyScored,
		})
	}

	batch, err := h.svc.ScoreBatch(c.Request.Context(), leads)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromBatch(batch, h.loc))
}

// ScoreStoredLead scores a lead already present in storage.
// POST /api/v1/leads/:id/score
func (h *Handler) ScoreStoredLead(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}

	result, err := h.svc.ScoreStoredLead(c.Request.Context(), leadID, tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromResult(result, h.loc))
}

// ScoreAllUnscored scores every unscored lead of the tenant. With a
// scheduler configured the run is enqueued for the background worker and
// the request returns immediately; without one it runs inline.
// POST /api/v1/leads/score-all
func (h *Handler) ScoreAllUnscored(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	if h.enqueue != nil {
		payload := scheduler.ScoringBatchPayload{TenantID: tenantID.String()}
		if err := h.enqueue.EnqueueScoringBatch(c.Request.Context(), payload, time.Time{}); err != nil {
			httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "failed to enqueue scoring batch", err))
			return
		}
		httpkit.JSON(c, http.StatusAccepted, transport.ScoreAllQueuedResponse{
			Enqueued: true,
			TenantID: tenantID.String(),
		})
		return
	}

	batch, err := h.svc.ScoreAllUnscored(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromBatch(batch, h.loc))
}

// GetScoring returns the stored scoring result for a lead.
// GET /api/v1/leads/:id/scoring
func (h *Handler) GetScoring(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return
	}

	result, err := h.svc.GetScoring(c.Request.Context(), leadID, tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromResult(result, h.loc))
}
