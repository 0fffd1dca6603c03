package transport

import (
	"time"

	"github.com/google/uuid"

	"leadpulse_backend/internal/leads/repository"
)

// CreateLeadRequest contains data for creating a new lead.
type CreateLeadRequest struct {
	Name                string  `json:"name" validate:"required,min=1,max=200"`
	Phone               string  `json:"phone" validate:"required,phone"`
	Email               *string `json:"email,omitempty" validate:"omitempty,email"`
	Address             *string `json:"address,omitempty" validate:"omitempty,max=500"`
	City                *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State               *string `json:"state,omitempty" validate:"omitempty,max=100"`
	Pincode             *string `json:"pincode,omitempty" validate:"omitempty,len=6"`
	ProductInterested   string  `json:"productInterested" validate:"required,max=200"`
	IncomeLevel         *string `json:"incomeLevel,omitempty" validate:"omitempty,max=50"`
	EmploymentType      *string `json:"employmentType,omitempty" validate:"omitempty,max=50"`
	LeadSource          string  `json:"leadSource" validate:"required,max=100"`
	ContactMethod       *string `json:"contactMethod,omitempty" validate:"omitempty,max=50"`
	NumPastInteractions int     `json:"numPastInteractions" validate:"min=0"`
	ShortNotes          *string `json:"shortNotes,omitempty" validate:"omitempty,max=2000"`
}

// UpdateLeadRequest carries optional field updates; omitted fields are
// left unchanged.
type UpdateLeadRequest struct {
	Name                *string    `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Phone               *string    `json:"phone,omitempty" validate:"omitempty,phone"`
	Email               *string    `json:"email,omitempty" validate:"omitempty,email"`
	Address             *string    `json:"address,omitempty" validate:"omitempty,max=500"`
	City                *string    `json:"city,omitempty" validate:"omitempty,max=100"`
	State               *string    `json:"state,omitempty" validate:"omitempty,max=100"`
	Pincode             *string    `json:"pincode,omitempty" validate:"omitempty,len=6"`
	ProductInterested   *string    `json:"productInterested,omitempty" validate:"omitempty,max=200"`
	IncomeLevel         *string    `json:"incomeLevel,omitempty" validate:"omitempty,max=50"`
	EmploymentType      *string    `json:"employmentType,omitempty" validate:"omitempty,max=50"`
	LeadSource          *string    `json:"leadSource,omitempty" validate:"omitempty,max=100"`
	ContactMethod       *string    `json:"contactMethod,omitempty" validate:"omitempty,max=50"`
	NumPastInteractions *int       `json:"numPastInteractions,omitempty" validate:"omitempty,min=0"`
	Status              *string    `json:"status,omitempty" validate:"omitempty,oneof=new contacted dropped"`
	ShortNotes          *string    `json:"shortNotes,omitempty" validate:"omitempty,max=2000"`
	LastContacted       *time.Time `json:"lastContacted,omitempty"`
}

// LeadResponse represents a lead in API responses.
type LeadResponse struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Phone               string    `json:"phone"`
	Email               *string   `json:"email,omitempty"`
	Address             *string   `json:"address,omitempty"`
	City                *string   `json:"city,omitempty"`
	State               *string   `json:"state,omitempty"`
	Pincode             *string   `json:"pincode,omitempty"`
	ProductInterested   string    `json:"productInterested"`
	IncomeLevel         *string   `json:"incomeLevel,omitempty"`
	EmploymentType      *string   `json:"employmentType,omitempty"`
	LeadSource          string    `json:"leadSource"`
	ContactMethod       *string   `json:"contactMethod,omitempty"`
	NumPastInteractions int       `json:"numPastInteractions"`
	LastContacted       *string   `json:"lastContacted,omitempty"`
	Status              string    `json:"status"`
	ShortNotes          *string   `json:"shortNotes,omitempty"`
	WhatsAppStatus      string    `json:"whatsappStatus"`
	CreatedAt           string    `json:"createdAt"`
	UpdatedAt           string    `json:"updatedAt"`
}

// LeadListResponse wraps a list of leads.
type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}

// FromLead maps a domain lead to its wire shape.
func FromLead(lead repository.Lead) LeadResponse {
	resp := LeadResponse{
		ID:                  lead.ID,
		Name:                lead.Name,
		Phone:               lead.Phone,
		Email:               lead.Email,
		Address:             lead.Address,
		City:                lead.City,
		State:               lead.State,
		Pincode:             lead.Pincode,
		ProductInterested:   lead.ProductInterested,
		IncomeLevel:         lead.IncomeLevel,
		EmploymentType:      lead.EmploymentType,
		LeadSource:          lead.LeadSource,
		ContactMethod:       lead.ContactMethod,
		NumPastInteractions: lead.NumPastInteractions,
		Status:              lead.Status,
		ShortNotes:          lead.ShortNotes,
		WhatsAppStatus:      lead.WhatsAppStatus,
		CreatedAt:           lead.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:           lead.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if lead.LastContacted != nil {
		formatted := lead.LastContacted.UTC().Format(time.RFC3339)
		resp.LastContacted = &formatted
	}
	return resp
}

// FromLeads maps a slice of domain leads.
func FromLeads(leads []repository.Lead) LeadListResponse {
	items := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, FromLead(lead))
	}
	return LeadListResponse{Items: items, Total: len(items)}
}
