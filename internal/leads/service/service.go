// Package service implements lead management use cases.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"leadpulse_backend/internal/leads/repository"
	"leadpulse_backend/internal/leads/transport"
	"leadpulse_backend/platform/apperr"
	"leadpulse_backend/platform/logger"
	"leadpulse_backend/platform/phone"
)

type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create stores a new lead. Phone numbers are normalized to E.164 before
// persisting so lookups and WhatsApp sends agree on the format.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateLeadRequest) (repository.Lead, error) {
	lead, err := s.repo.Create(ctx, repository.CreateLeadParams{
		TenantID:            tenantID,
		Name:                req.Name,
		Phone:               phone.NormalizeE164(req.Phone),
		Email:               req.Email,
		Address:             req.Address,
		City:                req.City,
		State:               req.State,
		Pincode:             req.Pincode,
		ProductInterested:   req.ProductInterested,
		IncomeLevel:         req.IncomeLevel,
		EmploymentType:      req.EmploymentType,
		LeadSource:          req.LeadSource,
		ContactMethod:       req.ContactMethod,
		NumPastInteractions: req.NumPastInteractions,
		ShortNotes:          req.ShortNotes,
	})
	if err != nil {
		s.log.DatabaseError("lead_create", err)
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to create lead", err)
	}
	return lead, nil
}

// Get returns one lead for the tenant.
func (s *Service) Get(ctx context.Context, leadID, tenantID uuid.UUID) (repository.Lead, error) {
	lead, err := s.repo.GetByID(ctx, leadID, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound("lead not found")
		}
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}
	return lead, nil
}

// List returns all leads for the tenant, newest first.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]repository.Lead, error) {
	leads, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list leads", err)
	}
	return leads, nil
}

// Update applies a partial update to a lead.
func (s *Service) Update(ctx context.Context, leadID, tenantID uuid.UUID, req transport.UpdateLeadRequest) (repository.Lead, error) {
	params := repository.UpdateLeadParams{
		Name:                req.Name,
		Email:               req.Email,
		Address:             req.Address,
		City:                req.City,
		State:               req.State,
		Pincode:             req.Pincode,
		ProductInterested:   req.ProductInterested,
		IncomeLevel:         req.IncomeLevel,
		EmploymentType:      req.EmploymentType,
		LeadSource:          req.LeadSource,
		ContactMethod:       req.ContactMethod,
		NumPastInteractions: req.NumPastInteractions,
		Status:              req.Status,
		ShortNotes:          req.ShortNotes,
		LastContacted:       req.LastContacted,
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}

	lead, err := s.repo.Update(ctx, leadID, tenantID, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound("lead not found")
		}
		s.log.DatabaseError("lead_update", err)
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to update lead", err)
	}
	return lead, nil
}

// Delete removes a lead together with its scoring result and message log.
func (s *Service) Delete(ctx context.Context, leadID, tenantID uuid.UUID) error {
	err := s.repo.Delete(ctx, leadID, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return apperr.Wrap(apperr.KindInternal, "failed to delete lead", err)
	}
	return nil
}
