package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"leadpulse_backend/internal/leads/repository"
	"leadpulse_backend/platform/logger"

	"github.com/google/uuid"
)

// Options tunes engine behavior beyond its collaborators.
type Options struct {
	// Location is the reference timezone for contact-time rules.
	Location *time.Location
	// BatchConcurrency bounds parallel reasoning calls in a batch.
	BatchConcurrency int
	// FallbackEnabled switches on heuristic scoring when the reasoning
	// service fails. Off, failures surface as errors.
	FallbackEnabled bool
}

// Engine runs the scoring pipeline for single leads and batches.
type Engine struct {
	reasoner        Reasoner
	store           Store
	log             *logger.Logger
	loc             *time.Location
	concurrency     int
	fallbackEnabled bool
}

func New(reasoner Reasoner, store Store, log *logger.Logger, opts Options) *Engine {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	concurrency := opts.BatchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Engine{
		reasoner:        reasoner,
		store:           store,
		log:             log,
		loc:             loc,
		concurrency:     concurrency,
		fallbackEnabled: opts.FallbackEnabled,
	}
}

// Score runs the full pipeline for one lead and persists the result.
// When the reasoning service fails and fallback scoring is enabled, a
// heuristic assessment is stored instead of surfacing the error.
func (e *Engine) Score(ctx context.Context, lead repository.Lead, now time.Time) (ScoringResult, error) {
	result, err := e.Assess(ctx, lead, now)
	if err != nil {
		return ScoringResult{}, err
	}
	if err := e.store.Upsert(ctx, result); err != nil {
		e.log.DatabaseError("scoring_upsert", err)
		return ScoringResult{}, err
	}
	return result, nil
}

// Assess produces a ScoringResult without persisting it. The stateless
// single-lead flow uses this directly; the lead profile may be absent
// from storage.
func (e *Engine) Assess(ctx context.Context, lead repository.Lead, now time.Time) (ScoringResult, error) {
	assessment, fallback, err := e.evaluate(ctx, lead, now)
	if err != nil {
		return ScoringResult{}, err
	}
	e.log.ScoringEvent(lead.ID.String(), assessment.Score, assessment.Tier, fallback)
	return ScoringResult{
		LeadID:            lead.ID,
		TenantID:          lead.TenantID,
		Score:             assessment.Score,
		Tier:              assessment.Tier,
		Reason:            assessment.Reason,
		BestContactTime:   assessment.BestContactTime,
		SuggestedActions:  assessment.SuggestedActions,
		TextMessagePoints: assessment.TextMessagePoints,
		CallTalkingPoints: assessment.CallTalkingPoints,
		CreatedAt:         now,
	}, nil
}

// evaluate calls the reasoning service and validates its answer. A service
// outage degrades to heuristic scoring when enabled; a malformed response
// never does, it is a lead-level failure the caller may retry.
func (e *Engine) evaluate(ctx context.Context, lead repository.Lead, now time.Time) (Assessment, bool, error) {
	raw, err := e.reasoner.Complete(ctx, SystemPrompt, BuildPrompt(lead, now))
	if err != nil {
		if e.fallbackEnabled && ctx.Err() == nil && (errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout)) {
			e.log.ScoringError(lead.ID.String(), err)
			return FallbackScore(lead, now, e.loc), true, nil
		}
		return Assessment{}, false, err
	}
	assessment, err := ValidateAndRepair(raw, now, e.loc)
	if err != nil {
		return Assessment{}, false, err
	}
	return assessment, false, nil
}

// ScoreBatch scores a collection of leads with bounded concurrency.
// Already-scored leads are skipped without touching the reasoning service.
// Per-lead failures are collected, not fatal; successful results are still
// persisted. A persistence failure is fatal for the batch, but the returned
// BatchResult carries every computed result plus the leads whose scores
// could not be stored. Context cancellation stops the batch.
func (e *Engine) ScoreBatch(ctx context.Context, leads []BatchLead, now time.Time) (BatchResult, error) {
	var (
		mu    sync.Mutex
		batch BatchResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, item := range leads {
		if item.AlreadyScored {
			batch.Skipped++
			continue
		}
		lead := item.Lead
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			result, err := e.Assess(gctx, lead, now)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.log.ScoringError(lead.ID.String(), err)
				batch.Errors = append(batch.Errors, LeadError{LeadID: lead.ID, Err: err})
				return nil
			}
			batch.Results = append(batch.Results, result)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return batch, err
	}

	var persistErr error
	for _, result := range batch.Results {
		if err := e.store.Upsert(ctx, result); err != nil {
			e.log.DatabaseError("scoring_upsert", err)
			if persistErr == nil {
				persistErr = err
			}
			batch.Unpersisted = append(batch.Unpersisted, result.LeadID)
		}
	}
	return batch, persistErr
}

// Rescore forces a fresh scoring run for a lead regardless of any existing
// result; the upsert overwrites the previous row for the (tenant, lead) pair.
func (e *Engine) Rescore(ctx context.Context, lead repository.Lead, now time.Time) (ScoringResult, error) {
	return e.Score(ctx, lead, now)
}

// Existing returns the stored result for a lead, if any.
func (e *Engine) Existing(ctx context.Context, tenantID, leadID uuid.UUID) (*ScoringResult, error) {
	return e.store.GetExisting(ctx, tenantID, leadID)
}
