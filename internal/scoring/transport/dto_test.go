package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"leadpulse_backend/internal/scoring/engine"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

func TestFromResultRendersContactTimeInReferenceZone(t *testing.T) {
	// Stored timestamps come back from Postgres in UTC.
	utc := time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC)
	result := engine.ScoringResult{
		LeadID:           uuid.New(),
		TenantID:         uuid.New(),
		Score:            72,
		Tier:             engine.TierHigh,
		Reason:           "solid profile",
		BestContactTime:  utc,
		SuggestedActions: []string{"a", "b", "c"},
		CreatedAt:        utc,
	}

	resp := FromResult(result, ist)
	if resp.BestContactTime != "2024-01-15 18:00" {
		t.Errorf("bestContactTime = %q, want 2024-01-15 18:00", resp.BestContactTime)
	}
	if resp.Score != 72 || resp.Tier != engine.TierHigh {
		t.Errorf("score/tier = %d/%q", resp.Score, resp.Tier)
	}
}

func TestFromBatchShape(t *testing.T) {
	leadID := uuid.New()
	batch := engine.BatchResult{
		Results: []engine.ScoringResult{{LeadID: uuid.New(), BestContactTime: time.Now()}},
		Errors:  []engine.LeadError{{LeadID: leadID, Err: errors.New("boom")}},
		Skipped: 2,
	}

	resp := FromBatch(batch, ist)
	if len(resp.Results) != 1 || len(resp.Errors) != 1 || resp.Skipped != 2 {
		t.Fatalf("shape = %d/%d/%d, want 1/1/2", len(resp.Results), len(resp.Errors), resp.Skipped)
	}
	if resp.Errors[0].LeadID != leadID || resp.Errors[0].Error != "boom" {
		t.Errorf("error entry = %+v", resp.Errors[0])
	}
}

func TestLeadPayloadDefaultsStatus(t *testing.T) {
	tenantID := uuid.New()
	lead := LeadPayload{ID: uuid.New(), Name: "Asha", Phone: "+919876543210"}.ToLead(tenantID)
	if lead.Status != "new" {
		t.Errorf("status = %q, want new", lead.Status)
	}
	if lead.TenantID != tenantID {
		t.Errorf("tenantID = %v, want %v", lead.TenantID, tenantID)
	}
}
