// Package repository provides persistence for leads.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lead does not exist for the tenant.
var ErrNotFound = errors.New("lead not found")

// Lead statuses form a closed set enforced by the database.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusDropped   = "dropped"
)

// Lead is a prospective customer record with contact and financial-profile fields.
type Lead struct {
	ID                  uuid.UUID
	TenantID            uuid.UUID
	Name                string
	Phone               string
	Email               *string
	Address             *string
	City                *string
	State               *string
	Pincode             *string
	ProductInterested   string
	IncomeLevel         *string
	EmploymentType      *string
	LeadSource          string
	ContactMethod       *string
	NumPastInteractions int
	LastContacted       *time.Time
	Status              string
	ShortNotes          *string
	WhatsAppStatus      string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CreateLeadParams contains the caller-supplied fields for a new lead.
type CreateLeadParams struct {
	TenantID            uuid.UUID
	Name                string
	Phone               string
	Email               *string
	Address             *string
	City                *string
	State               *string
	Pincode             *string
	ProductInterested   string
	IncomeLevel         *string
	EmploymentType      *string
	LeadSource          string
	ContactMethod       *string
	NumPastInteractions int
	ShortNotes          *string
}

// UpdateLeadParams carries optional field updates; nil means unchanged.
type UpdateLeadParams struct {
	Name                *string
	Phone               *string
	Email               *string
	Address             *string
	City                *string
	State               *string
	Pincode             *string
	ProductInterested   *string
	IncomeLevel         *string
	EmploymentType      *string
	LeadSource          *string
	ContactMethod       *string
	NumPastInteractions *int
	Status              *string
	ShortNotes          *string
	WhatsAppStatus      *string
	LastContacted       *time.Time
}

// Repository provides lead persistence backed by Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `
	id, tenant_id, name, phone, email, address, city, state, pincode,
	product_interested, income_level, employment_type, lead_source,
	contact_method, num_past_interactions, last_contacted, status,
	short_notes, whatsapp_status, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.TenantID, &lead.Name, &lead.Phone, &lead.Email,
		&lead.Address, &lead.City, &lead.State, &lead.Pincode,
		&lead.ProductInterested, &lead.IncomeLevel, &lead.EmploymentType,
		&lead.LeadSource, &lead.ContactMethod, &lead.NumPastInteractions,
		&lead.LastContacted, &lead.Status, &lead.ShortNotes,
		&lead.WhatsAppStatus, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

// Create inserts a new lead for the tenant.
func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			tenant_id, name, phone, email, address, city, state, pincode,
			product_interested, income_level, employment_type, lead_source,
			contact_method, num_past_interactions, short_notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+leadColumns,
		params.TenantID, params.Name, params.Phone, params.Email, params.Address,
		params.City, params.State, params.Pincode, params.ProductInterested,
		params.IncomeLevel, params.EmploymentType, params.LeadSource,
		params.ContactMethod, params.NumPastInteractions, params.ShortNotes,
	)
	return scanLead(row)
}

// GetByID returns a single lead scoped to the tenant.
func (r *Repository) GetByID(ctx context.Context, leadID, tenantID uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE id = $1 AND tenant_id = $2
	`, leadID, tenantID)
	return scanLead(row)
}

// List returns all leads for the tenant, newest first.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// ListUnscored returns the tenant's leads with no scoring result yet.
func (r *Repository) ListUnscored(ctx context.Context, tenantID uuid.UUID) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads l
		WHERE l.tenant_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM scoring_results s
			WHERE s.lead_id = l.id AND s.tenant_id = l.tenant_id
		  )
		ORDER BY l.created_at ASC
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// Update applies the non-nil fields and bumps updated_at.
func (r *Repository) Update(ctx context.Context, leadID, tenantID uuid.UUID, params UpdateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			name = COALESCE($3, name),
			phone = COALESCE($4, phone),
			email = COALESCE($5, email),
			address = COALESCE($6, address),
			city = COALESCE($7, city),
			state = COALESCE($8, state),
			pincode = COALESCE($9, pincode),
			product_interested = COALESCE($10, product_interested),
			income_level = COALESCE($11, income_level),
			employment_type = COALESCE($12, employment_type),
			lead_source = COALESCE($13, lead_source),
			contact_method = COALESCE($14, contact_method),
			num_past_interactions = COALESCE($15, num_past_interactions),
			status = COALESCE($16, status),
			short_notes = COALESCE($17, short_notes),
			whatsapp_status = COALESCE($18, whatsapp_status),
			last_contacted = COALESCE($19, last_contacted),
			updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+leadColumns,
		leadID, tenantID,
		params.Name, params.Phone, params.Email, params.Address, params.City,
		params.State, params.Pincode, params.ProductInterested,
		params.IncomeLevel, params.EmploymentType, params.LeadSource,
		params.ContactMethod, params.NumPastInteractions, params.Status,
		params.ShortNotes, params.WhatsAppStatus, params.LastContacted,
	)
	return scanLead(row)
}

// Delete removes a lead together with its scoring result. Message logs
// cascade at the database level; scoring_results has no FK because the
// stateless scoring flow stores results for leads that were never created
// here.
func (r *Repository) Delete(ctx context.Context, leadID, tenantID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		DELETE FROM leads WHERE id = $1 AND tenant_id = $2
	`, leadID, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM scoring_results WHERE lead_id = $1 AND tenant_id = $2
	`, leadID, tenantID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
