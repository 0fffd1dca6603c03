// Package repository aggregates lead funnel statistics.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LeadCounts holds the per-status breakdown of a tenant's leads.
type LeadCounts struct {
	Total     int
	ByStatus  map[string]int
	Contacted int
}

// CountLeads aggregates lead totals for a tenant.
func (r *Repository) CountLeads(ctx context.Context, tenantID uuid.UUID) (LeadCounts, error) {
	counts := LeadCounts{ByStatus: make(map[string]int)}

	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM leads
		WHERE tenant_id = $1
		GROUP BY status`,
		tenantID,
	)
	if err != nil {
		return counts, fmt.Errorf("count leads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return counts, fmt.Errorf("scan lead count: %w", err)
		}
		counts.ByStatus[status] = n
		counts.Total += n
	}
	if err := rows.Err(); err != nil {
		return counts, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM leads
		WHERE tenant_id = $1 AND whatsapp_status = 'sent'`,
		tenantID,
	).Scan(&counts.Contacted)
	if err != nil {
		return counts, fmt.Errorf("count contacted leads: %w", err)
	}
	return counts, nil
}

// SourceCounts breaks leads down by acquisition source.
func (r *Repository) SourceCounts(ctx context.Context, tenantID uuid.UUID) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT lead_source, COUNT(*) FROM leads
		WHERE tenant_id = $1
		GROUP BY lead_source`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("count sources: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("scan source count: %w", err)
		}
		counts[source] = n
	}
	return counts, rows.Err()
}
