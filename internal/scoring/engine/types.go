// Package engine implements the AI lead scoring pipeline: prompt building,
// reasoning-service invocation, response validation and repair, and batch
// orchestration.
package engine

import (
	"context"
	"errors"
	"time"

	"leadpulse_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// Typed failures of the scoring pipeline. Adapters wrap their causes with
// these sentinels so callers can branch with errors.Is.
var (
	// ErrUnavailable means the reasoning service kept failing after retries.
	ErrUnavailable = errors.New("reasoning service unavailable")
	// ErrTimeout means the reasoning service did not answer within the deadline.
	ErrTimeout = errors.New("reasoning service timed out")
	// ErrMalformedResponse means the reasoning service returned a payload
	// that fails the hard validation checks.
	ErrMalformedResponse = errors.New("malformed reasoning response")
)

// Reasoner produces a raw structured payload for a scoring prompt.
// Implementations own their retry and deadline policy.
type Reasoner interface {
	Complete(ctx context.Context, system, user string) ([]byte, error)
}

// Store persists scoring results, keyed on (tenant, lead).
type Store interface {
	Upsert(ctx context.Context, result ScoringResult) error
	GetExisting(ctx context.Context, tenantID, leadID uuid.UUID) (*ScoringResult, error)
}

// Priority tiers derived from the score. One canonical scheme.
const (
	TierVeryLow  = "Very Low Priority"
	TierLow      = "Low Priority"
	TierMedium   = "Medium Priority"
	TierHigh     = "High Priority"
	TierVeryHigh = "Very High Priority"
)

// TierForScore maps a score in [0,100] to its priority tier.
func TierForScore(score int) string {
	switch {
	case score <= 20:
		return TierVeryLow
	case score <= 40:
		return TierLow
	case score <= 60:
		return TierMedium
	case score <= 80:
		return TierHigh
	default:
		return TierVeryHigh
	}
}

// TextMessagePoints is structured guidance for a text-message outreach.
type TextMessagePoints struct {
	KeyPoints       []string `json:"keyPoints"`
	Tone            string   `json:"tone"`
	AvoidMentioning []string `json:"avoidMentioning"`
	Closing         string   `json:"closing"`
}

// CallTalkingPoints is structured guidance for a phone call.
type CallTalkingPoints struct {
	Opening           string   `json:"opening"`
	KeyTopics         []string `json:"keyTopics"`
	ObjectionHandling []string `json:"objectionHandling"`
	Closing           string   `json:"closing"`
}

// ScoringResult is the engine's output for one lead.
type ScoringResult struct {
	LeadID            uuid.UUID
	TenantID          uuid.UUID
	Score             int
	Tier              string
	Reason            string
	BestContactTime   time.Time
	SuggestedActions  []string
	TextMessagePoints TextMessagePoints
	CallTalkingPoints CallTalkingPoints
	CreatedAt         time.Time
}

// BatchLead pairs a lead with the caller-supplied precondition flag.
// AlreadyScored leads are never sent to the reasoning service.
type BatchLead struct {
	Lead          repository.Lead
	AlreadyScored bool
}

// LeadError records a per-lead failure inside a batch.
type LeadError struct {
	LeadID uuid.UUID
	Err    error
}

// BatchResult is the partial-success outcome of a batch run.
type BatchResult struct {
	Results []ScoringResult
	Errors  []LeadError
	Skipped int
	// Unpersisted lists leads whose scores were computed but could not be
	// stored. Set only when the batch returns a persistence error.
	Unpersisted []uuid.UUID
}
