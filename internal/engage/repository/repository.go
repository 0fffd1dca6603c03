// Package repository logs WhatsApp message deliveries per lead.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Delivery statuses for logged messages.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Message is one outbound WhatsApp message.
type Message struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	LeadID    uuid.UUID
	Phone     string
	Body      string
	Status    string
	Error     *string
	CreatedAt time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Log records the outcome of one send attempt.
func (r *Repository) Log(ctx context.Context, msg Message) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO whatsapp_messages (tenant_id, lead_id, phone, body, status, error)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.TenantID, msg.LeadID, msg.Phone, msg.Body, msg.Status, msg.Error,
	)
	if err != nil {
		return fmt.Errorf("log whatsapp message: %w", err)
	}
	return nil
}

// ListByLead returns the message history for one lead, newest first.
func (r *Repository) ListByLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, lead_id, phone, body, status, error, created_at
		FROM whatsapp_messages
		WHERE tenant_id = $1 AND lead_id = $2
		ORDER BY created_at DESC`,
		tenantID, leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("list whatsapp messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.TenantID, &msg.LeadID, &msg.Phone, &msg.Body, &msg.Status, &msg.Error, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan whatsapp message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
