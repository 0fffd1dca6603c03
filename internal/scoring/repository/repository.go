// Package repository persists scoring results in Postgres. One current
// result per (tenant, lead); re-scoring overwrites.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadpulse_backend/internal/scoring/engine"
)

type Repository struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Upsert writes a scoring result, replacing any previous result for the
// same (tenant, lead) pair. Safe under concurrent writers for different
// leads; same-lead writers serialize on the unique index.
func (r *Repository) Upsert(ctx context.Context, result engine.ScoringResult) error {
	actions, err := json.Marshal(result.SuggestedActions)
	if err != nil {
		return fmt.Errorf("marshal suggested actions: %w", err)
	}
	textPoints, err := json.Marshal(result.TextMessagePoints)
	if err != nil {
		return fmt.Errorf("marshal text message points: %w", err)
	}
	callPoints, err := json.Marshal(result.CallTalkingPoints)
	if err != nil {
		return fmt.Errorf("marshal call talking points: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO scoring_results (
			tenant_id, lead_id, score, tier, reason, best_contact_time,
			suggested_actions, text_message_points, call_talking_points
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, lead_id) DO UPDATE SET
			score = EXCLUDED.score,
			tier = EXCLUDED.tier,
			reason = EXCLUDED.reason,
			best_contact_time = EXCLUDED.best_contact_time,
			suggested_actions = EXCLUDED.suggested_actions,
			text_message_points = EXCLUDED.text_message_points,
			call_talking_points = EXCLUDED.call_talking_points,
			updated_at = now()`,
		result.TenantID, result.LeadID, result.Score, result.Tier, result.Reason,
		result.BestContactTime, actions, textPoints, callPoints,
	)
	if err != nil {
		return fmt.Errorf("upsert scoring result: %w", err)
	}
	return nil
}

// GetExisting returns the stored result for a lead, or nil when the lead
// has never been scored.
func (r *Repository) GetExisting(ctx context.Context, tenantID, leadID uuid.UUID) (*engine.ScoringResult, error) {
	row := r.db.QueryRow(ctx, `
		SELECT tenant_id, lead_id, score, tier, reason, best_contact_time,
		       suggested_actions, text_message_points, call_talking_points, created_at
		FROM scoring_results
		WHERE tenant_id = $1 AND lead_id = $2`,
		tenantID, leadID,
	)
	result, err := scanResult(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get scoring result: %w", err)
	}
	return result, nil
}

// ListByTenant returns all current results for a tenant, newest first.
func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]engine.ScoringResult, error) {
	rows, err := r.db.Query(ctx, `
		SELECT tenant_id, lead_id, score, tier, reason, best_contact_time,
		       suggested_actions, text_message_points, call_talking_points, created_at
		FROM scoring_results
		WHERE tenant_id = $1
		ORDER BY created_at DESC`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list scoring results: %w", err)
	}
	defer rows.Close()

	var results []engine.ScoringResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scoring result: %w", err)
		}
		results = append(results, *result)
	}
	return results, rows.Err()
}

// TierCounts aggregates how many leads sit in each priority tier.
func (r *Repository) TierCounts(ctx context.Context, tenantID uuid.UUID) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT tier, COUNT(*) FROM scoring_results
		WHERE tenant_id = $1
		GROUP BY tier`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("count tiers: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var tier string
		var n int
		if err := rows.Scan(&tier, &n); err != nil {
			return nil, fmt.Errorf("scan tier count: %w", err)
		}
		counts[tier] = n
	}
	return counts, rows.Err()
}

// AverageScore returns the mean score across a tenant's scored leads and
// how many leads that covers.
func (r *Repository) AverageScore(ctx context.Context, tenantID uuid.UUID) (float64, int, error) {
	var avg *float64
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT AVG(score), COUNT(*) FROM scoring_results
		WHERE tenant_id = $1`,
		tenantID,
	).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("average score: %w", err)
	}
	if avg == nil {
		return 0, 0, nil
	}
	return *avg, count, nil
}

func scanResult(row pgx.Row) (*engine.ScoringResult, error) {
	var (
		result     engine.ScoringResult
		bct        time.Time
		actions    []byte
		textPoints []byte
		callPoints []byte
	)
	if err := row.Scan(
		&result.TenantID, &result.LeadID, &result.Score, &result.Tier,
		&result.Reason, &bct, &actions, &textPoints, &callPoints, &result.CreatedAt,
	); err != nil {
		return nil, err
	}
	result.BestContactTime = bct
	if err := json.Unmarshal(actions, &result.SuggestedActions); err != nil {
		return nil, fmt.Errorf("decode suggested actions: %w", err)
	}
	if err := json.Unmarshal(textPoints, &result.TextMessagePoints); err != nil {
		return nil, fmt.Errorf("decode text message points: %w", err)
	}
	if err := json.Unmarshal(callPoints, &result.CallTalkingPoints); err != nil {
		return nil, fmt.Errorf("decode call talking points: %w", err)
	}
	return &result, nil
}
