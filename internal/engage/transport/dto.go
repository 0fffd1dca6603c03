package transport

import "github.com/google/uuid"

// SendRequest delivers one message body to a set of leads.
type SendRequest struct {
	LeadIDs []uuid.UUID `json:"leadIds" validate:"required,min=1,max=100"`
	Message string      `json:"message" validate:"required,min=1,max=4096"`
}

// SendOutcome reports the delivery outcome for one lead.
type SendOutcome struct {
	LeadID uuid.UUID `json:"leadId"`
	Status string    `json:"status"`
	Error  string    `json:"error,omitempty"`
}

// SendResponse is the partial-success outcome of a send call.
type SendResponse struct {
	Sent     int           `json:"sent"`
	Failed   int           `json:"failed"`
	Outcomes []SendOutcome `json:"outcomes"`
}
