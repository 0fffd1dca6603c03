package transport

import (
	"time"

	"github.com/google/uuid"

	"leadpulse_backend/internal/leads/repository"
	"leadpulse_backend/internal/scoring/engine"
)

// contactTimeLayout is the wire format for recommended contact times.
const contactTimeLayout = "2006-01-02 15:04"

// LeadPayload is a full lead profile submitted for scoring. Used by the
// stateless scoring endpoints where the lead need not exist in storage.
type LeadPayload struct {
	ID                  uuid.UUID  `json:"id" validate:"required"`
	Name                string     `json:"name" validate:"required,min=1,max=200"`
	Phone               string     `json:"phone" validate:"required,phone"`
	Email               *string    `json:"email,omitempty" validate:"omitempty,email"`
	Address             *string    `json:"address,omitempty" validate:"omitempty,max=500"`
	City                *string    `json:"city,omitempty" validate:"omitempty,max=100"`
	State               *string    `json:"state,omitempty" validate:"omitempty,max=100"`
	Pincode             *string    `json:"pincode,omitempty" validate:"omitempty,len=6"`
	ProductInterested   string     `json:"productInterested" validate:"required,max=200"`
	IncomeLevel         *string    `json:"incomeLevel,omitempty" validate:"omitempty,max=50"`
	EmploymentType      *string    `json:"employmentType,omitempty" validate:"omitempty,max=50"`
	LeadSource          string     `json:"leadSource" validate:"required,max=100"`
	ContactMethod       *string    `json:"contactMethod,omitempty" validate:"omitempty,max=50"`
	NumPastInteractions int        `json:"numPastInteractions" validate:"min=0"`
	LastContacted       *time.Time `json:"lastContacted,omitempty"`
	Status              string     `json:"status,omitempty" validate:"omitempty,oneof=new contacted dropped"`
	ShortNotes          *string    `json:"shortNotes,omitempty" validate:"omitempty,max=2000"`
}

// ToLead converts the payload into the domain lead for a tenant.
func (p LeadPayload) ToLead(tenantID uuid.UUID) repository.Lead {
	status := p.Status
	if status == "" {
		status = repository.StatusNew
	}
	return repository.Lead{
		ID:                  p.ID,
		TenantID:            tenantID,
		Name:                p.Name,
		Phone:               p.Phone,
		Email:               p.Email,
		Address:             p.Address,
		City:                p.City,
		State:               p.State,
		Pincode:             p.Pincode,
		ProductInterested:   p.ProductInterested,
		IncomeLevel:         p.IncomeLevel,
		EmploymentType:      p.EmploymentType,
		LeadSource:          p.LeadSource,
		ContactMethod:       p.ContactMethod,
		NumPastInteractions: p.NumPastInteractions,
		LastContacted:       p.LastContacted,
		Status:              status,
		ShortNotes:          p.ShortNotes,
	}
}

// BatchLeadPayload pairs a lead payload with its skip precondition.
type BatchLeadPayload struct {
	LeadPayload
	AlreadyScored bool `json:"alreadyScored"`
}

// ScoreBatchRequest scores a collection of leads in one call.
type ScoreBatchRequest struct {
	Leads []BatchLeadPayload `json:"leads" validate:"required,min=1,max=100,dive"`
}

// ScoringResultResponse is a scoring result on the wire.
type ScoringResultResponse struct {
	LeadID            uuid.UUID                `json:"leadId"`
	TenantID          uuid.UUID                `json:"tenantId"`
	Score             int                      `json:"score"`
	Tier              string                   `json:"tier"`
	Reason            string                   `json:"reason"`
	BestContactTime   string                   `json:"bestContactTime"`
	SuggestedActions  []string                 `json:"suggestedActions"`
	TextMessagePoints engine.TextMessagePoints `json:"textMessagePoints"`
	CallTalkingPoints engine.CallTalkingPoints `json:"callTalkingPoints"`
	CreatedAt         string                   `json:"createdAt"`
}

// FromResult maps a domain result to its wire shape, rendering the contact
// time in the reference timezone.
func FromResult(result engine.ScoringResult, loc *time.Location) ScoringResultResponse {
	return ScoringResultResponse{
		LeadID:            result.LeadID,
		TenantID:          result.TenantID,
		Score:             result.Score,
		Tier:              result.Tier,
		Reason:            result.Reason,
		BestContactTime:   result.BestContactTime.In(loc).Format(contactTimeLayout),
		SuggestedActions:  result.SuggestedActions,
		TextMessagePoints: result.TextMessagePoints,
		CallTalkingPoints: result.CallTalkingPoints,
		CreatedAt:         result.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ScoreAllQueuedResponse acknowledges a tenant-wide scoring run handed to
// the background worker.
type ScoreAllQueuedResponse struct {
	Enqueued bool   `json:"enqueued"`
	TenantID string `json:"tenantId"`
}

// LeadErrorResponse reports one failed lead inside a batch.
type LeadErrorResponse struct {
	LeadID uuid.UUID `json:"leadId"`
	Error  string    `json:"error"`
}

// BatchResponse is the partial-success outcome of a batch scoring call.
type BatchResponse struct {
	Results []ScoringResultResponse `json:"results"`
	Errors  []LeadErrorResponse     `json:"errors"`
	Skipped int                     `json:"skipped"`
}

// FromBatch maps a domain batch result to its wire shape.
func FromBatch(batch engine.BatchResult, loc *time.Location) BatchResponse {
	resp := BatchResponse{
		Results: make([]ScoringResultResponse, 0, len(batch.Results)),
		Errors:  make([]LeadErrorResponse, 0, len(batch.Errors)),
		Skipped: batch.Skipped,
	}
	for _, result := range batch.Results {
		resp.Results = append(resp.Results, FromResult(result, loc))
	}
	for _, failure := range batch.Errors {
		resp.Errors = append(resp.Errors, LeadErrorResponse{LeadID: failure.LeadID, Error: failure.Err.Error()})
	}
	return resp
}
