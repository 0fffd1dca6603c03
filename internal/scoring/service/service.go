// Package service exposes scoring use cases to the transport and
// scheduler layers.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	leadsrepo "leadpulse_backend/internal/leads/repository"
	"leadpulse_backend/internal/scoring/engine"
	"leadpulse_backend/platform/apperr"
	"leadpulse_backend/platform/logger"
)

// LeadReader is the slice of the leads repository the scoring flows need.
type LeadReader interface {
	GetByID(ctx context.Context, leadID, tenantID uuid.UUID) (leadsrepo.Lead, error)
	ListUnscored(ctx context.Context, tenantID uuid.UUID) ([]leadsrepo.Lead, error)
}

type Service struct {
	engine *engine.Engine
	leads  LeadReader
	log    *logger.Logger
	now    func() time.Time
}

func New(eng *engine.Engine, leads LeadReader, log *logger.Logger) *Service {
	return &Service{
		engine: eng,
		leads:  leads,
		log:    log,
		now:    time.Now,
	}
}

// ScoreLead scores a caller-supplied lead profile. The profile need not
// exist in storage and the result is returned without being persisted.
func (s *Service) ScoreLead(ctx context.Context, lead leadsrepo.Lead) (engine.ScoringResult, error) {
	result, err := s.engine.Assess(ctx, lead, s.now())
	if err != nil {
		return engine.ScoringResult{}, scoringError(err)
	}
	return result, nil
}

// ScoreBatch scores a caller-supplied collection of leads and persists the
// successful results. A persistence failure surfaces as an error whose
// details name the leads that were scored but not stored.
func (s *Service) ScoreBatch(ctx context.Context, leads []engine.BatchLead) (engine.BatchResult, error) {
	batch, err := s.engine.ScoreBatch(ctx, leads, s.now())
	if err != nil {
		return batch, batchError(batch, err)
	}
	return batch, nil
}

// ScoreStoredLead loads a lead from storage and scores it, overwriting any
// previous result.
func (s *Service) ScoreStoredLead(ctx context.Context, leadID, tenantID uuid.UUID) (engine.ScoringResult, error) {
	lead, err := s.leads.GetByID(ctx, leadID, tenantID)
	if err != nil {
		if errors.Is(err, leadsrepo.ErrNotFound) {
			return engine.ScoringResult{}, apperr.NotFound("lead not found")
		}
		return engine.ScoringResult{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}
	result, err := s.engine.Score(ctx, lead, s.now())
	if err != nil {
		return engine.ScoringResult{}, scoringError(err)
	}
	return result, nil
}

// ScoreAllUnscored scores every lead of the tenant that has no current
// scoring result. Already-scored leads are filtered out by the query, so
// nothing here reaches the reasoning service twice.
func (s *Service) ScoreAllUnscored(ctx context.Context, tenantID uuid.UUID) (engine.BatchResult, error) {
	leads, err := s.leads.ListUnscored(ctx, tenantID)
	if err != nil {
		return engine.BatchResult{}, apperr.Wrap(apperr.KindInternal, "failed to list unscored leads", err)
	}
	batch := make([]engine.BatchLead, 0, len(leads))
	for _, lead := range leads {
		batch = append(batch, engine.BatchLead{Lead: lead})
	}
	return s.ScoreBatch(ctx, batch)
}

// GetScoring returns the stored result for a lead.
func (s *Service) GetScoring(ctx context.Context, leadID, tenantID uuid.UUID) (engine.ScoringResult, error) {
	result, err := s.engine.Existing(ctx, tenantID, leadID)
	if err != nil {
		return engine.ScoringResult{}, apperr.Wrap(apperr.KindInternal, "failed to load scoring result", err)
	}
	if result == nil {
		return engine.ScoringResult{}, apperr.NotFound("lead has not been scored")
	}
	return *result, nil
}

// batchError wraps a batch-level failure, attaching the IDs of leads whose
// scores were computed but not persisted so the caller can re-run them.
func batchError(batch engine.BatchResult, err error) error {
	if len(batch.Unpersisted) == 0 {
		return apperr.Wrap(apperr.KindInternal, "batch scoring aborted", err)
	}
	ids := make([]string, 0, len(batch.Unpersisted))
	for _, id := range batch.Unpersisted {
		ids = append(ids, id.String())
	}
	return apperr.Wrap(apperr.KindInternal, "failed to persist batch scoring results", err).
		WithDetails(map[string]interface{}{"unpersistedLeadIds": ids})
}

// scoringError maps engine sentinels to the API error taxonomy.
func scoringError(err error) error {
	switch {
	case errors.Is(err, engine.ErrMalformedResponse):
		return apperr.Wrap(apperr.KindUnavailable, "reasoning service returned an unusable response, retry the request", err)
	case errors.Is(err, engine.ErrTimeout):
		return apperr.Wrap(apperr.KindTimeout, "reasoning service timed out", err)
	case errors.Is(err, engine.ErrUnavailable):
		return apperr.Wrap(apperr.KindUnavailable, "reasoning service unavailable", err)
	default:
		return apperr.Wrap(apperr.KindInternal, "scoring failed", err)
	}
}
