// Package service assembles the analytics overview for a tenant.
package service

import (
	"context"

	"github.com/google/uuid"

	"leadpulse_backend/internal/analytics/repository"
	"leadpulse_backend/platform/apperr"
)

// ScoringStats is the slice of the scoring store the overview needs.
type ScoringStats interface {
	TierCounts(ctx context.Context, tenantID uuid.UUID) (map[string]int, error)
	AverageScore(ctx context.Context, tenantID uuid.UUID) (float64, int, error)
}

// Overview is the tenant-wide funnel snapshot.
type Overview struct {
	TotalLeads     int            `json:"totalLeads"`
	LeadsByStatus  map[string]int `json:"leadsByStatus"`
	LeadsBySource  map[string]int `json:"leadsBySource"`
	ContactedViaWA int            `json:"contactedViaWhatsapp"`
	ScoredLeads    int            `json:"scoredLeads"`
	AverageScore   float64        `json:"averageScore"`
	TierCounts     map[string]int `json:"tierCounts"`
}

type Service struct {
	repo    *repository.Repository
	scoring ScoringStats
}

func New(repo *repository.Repository, scoring ScoringStats) *Service {
	return &Service{repo: repo, scoring: scoring}
}

// Overview builds the analytics snapshot for a tenant.
func (s *Service) Overview(ctx context.Context, tenantID uuid.UUID) (Overview, error) {
	leads, err := s.repo.CountLeads(ctx, tenantID)
	if err != nil {
		return Overview{}, apperr.Wrap(apperr.KindInternal, "failed to aggregate leads", err)
	}
	sources, err := s.repo.SourceCounts(ctx, tenantID)
	if err != nil {
		return Overview{}, apperr.Wrap(apperr.KindInternal, "failed to aggregate sources", err)
	}
	tiers, err := s.scoring.TierCounts(ctx, tenantID)
	if err != nil {
		return Overview{}, apperr.Wrap(apperr.KindInternal, "failed to aggregate tiers", err)
	}
	avg, scored, err := s.scoring.AverageScore(ctx, tenantID)
	if err != nil {
		return Overview{}, apperr.Wrap(apperr.KindInternal, "failed to compute average score", err)
	}

	return Overview{
		TotalLeads:     leads.Total,
		LeadsByStatus:  leads.ByStatus,
		LeadsBySource:  sources,
		ContactedViaWA: leads.Contacted,
		ScoredLeads:    scored,
		AverageScore:   avg,
		TierCounts:     tiers,
	}, nil
}
