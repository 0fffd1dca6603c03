// Package service implements WhatsApp outreach use cases.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"leadpulse_backend/internal/engage/repository"
	"leadpulse_backend/internal/engage/transport"
	"leadpulse_backend/internal/engage/whatsapp"
	leadsrepo "leadpulse_backend/internal/leads/repository"
	"leadpulse_backend/platform/apperr"
	"leadpulse_backend/platform/logger"
)

const whatsappStatusSent = "sent"

type Service struct {
	client *whatsapp.Client
	msgs   *repository.Repository
	leads  *leadsrepo.Repository
	log    *logger.Logger
	now    func() time.Time
}

func New(client *whatsapp.Client, msgs *repository.Repository, leads *leadsrepo.Repository, log *logger.Logger) *Service {
	return &Service{client: client, msgs: msgs, leads: leads, log: log, now: time.Now}
}

// Send delivers a message to each requested lead. Per-lead failures are
// reported in the response instead of failing the call; a delivered
// message marks the lead contacted.
func (s *Service) Send(ctx context.Context, tenantID uuid.UUID, req transport.SendRequest) (transport.SendResponse, error) {
	if s.client == nil {
		return transport.SendResponse{}, apperr.Unavailable("whatsapp gateway is not configured")
	}

	resp := transport.SendResponse{Outcomes: make([]transport.SendOutcome, 0, len(req.LeadIDs))}
	for _, leadID := range req.LeadIDs {
		outcome := s.sendOne(ctx, tenantID, leadID, req.Message)
		if outcome.Status == repository.StatusSent {
			resp.Sent++
		} else {
			resp.Failed++
		}
		resp.Outcomes = append(resp.Outcomes, outcome)
		if ctx.Err() != nil {
			break
		}
	}
	return resp, nil
}

func (s *Service) sendOne(ctx context.Context, tenantID, leadID uuid.UUID, message string) transport.SendOutcome {
	lead, err := s.leads.GetByID(ctx, leadID, tenantID)
	if err != nil {
		if errors.Is(err, leadsrepo.ErrNotFound) {
			return transport.SendOutcome{LeadID: leadID, Status: repository.StatusFailed, Error: "lead not found"}
		}
		return transport.SendOutcome{LeadID: leadID, Status: repository.StatusFailed, Error: "failed to load lead"}
	}

	sendErr := s.client.SendMessage(ctx, lead.Phone, message)

	logEntry := repository.Message{
		TenantID: tenantID,
		LeadID:   leadID,
		Phone:    lead.Phone,
		Body:     message,
		Status:   repository.StatusSent,
	}
	if sendErr != nil {
		errText := sendErr.Error()
		logEntry.Status = repository.StatusFailed
		logEntry.Error = &errText
	}
	if err := s.msgs.Log(ctx, logEntry); err != nil {
		s.log.DatabaseError("whatsapp_log", err)
	}

	if sendErr != nil {
		s.log.Error("whatsapp send failed", "lead_id", leadID.String(), "error", sendErr.Error())
		return transport.SendOutcome{LeadID: leadID, Status: repository.StatusFailed, Error: sendErr.Error()}
	}

	now := s.now()
	status := whatsappStatusSent
	contacted := leadsrepo.StatusContacted
	if _, err := s.leads.Update(ctx, leadID, tenantID, leadsrepo.UpdateLeadParams{
		WhatsAppStatus: &status,
		LastContacted:  &now,
		Status:         &contacted,
	}); err != nil {
		s.log.DatabaseError("whatsapp_mark_contacted", err)
	}

	return transport.SendOutcome{LeadID: leadID, Status: repository.StatusSent}
}

// History returns the message log for one lead.
func (s *Service) History(ctx context.Context, tenantID, leadID uuid.UUID) ([]repository.Message, error) {
	messages, err := s.msgs.ListByLead(ctx, tenantID, leadID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list messages", err)
	}
	return messages, nil
}
