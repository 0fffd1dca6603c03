package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	leadsrepo "leadpulse_backend/internal/leads/repository"
	"leadpulse_backend/internal/scheduler"
	"leadpulse_backend/internal/scoring/engine"
	"leadpulse_backend/internal/scoring/service"
	"leadpulse_backend/platform/httpkit"
	"leadpulse_backend/platform/logger"
	"leadpulse_backend/platform/validator"
)

const assessmentJSON = `{
	"score": 72,
	"reason": "Strong income profile with recent engagement",
	"bestContactTime": "2024-01-15 18:00",
	"suggestedActions": ["Call within 24 hours", "Send loan brochure", "Schedule follow-up"]
}`

type fakeReasoner struct {
	calls int32
}

func (f *fakeReasoner) Complete(ctx context.Context, system, user string) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	return []byte(assessmentJSON), nil
}

type fakeStore struct {
	upserts   int32
	upsertErr error
}

func (f *fakeStore) Upsert(ctx context.Context, result engine.ScoringResult) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	atomic.AddInt32(&f.upserts, 1)
	return nil
}

func (f *fakeStore) GetExisting(ctx context.Context, tenantID, leadID uuid.UUID) (*engine.ScoringResult, error) {
	return nil, nil
}

type fakeLeads struct {
	unscored []leadsrepo.Lead
}

func (f *fakeLeads) GetByID(ctx context.Context, leadID, tenantID uuid.UUID) (leadsrepo.Lead, error) {
	return leadsrepo.Lead{}, leadsrepo.ErrNotFound
}

func (f *fakeLeads) ListUnscored(ctx context.Context, tenantID uuid.UUID) ([]leadsrepo.Lead, error) {
	return f.unscored, nil
}

type fakeEnqueuer struct {
	calls    int32
	payloads []scheduler.ScoringBatchPayload
}

func (f *fakeEnqueuer) EnqueueScoringBatch(ctx context.Context, payload scheduler.ScoringBatchPayload, runAt time.Time) error {
	atomic.AddInt32(&f.calls, 1)
	f.payloads = append(f.payloads, payload)
	return nil
}

func newTestRouter(t *testing.T, reasoner engine.Reasoner, store engine.Store, leads *fakeLeads, enqueue BatchEnqueuer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New("test")
	eng := engine.New(reasoner, store, log, engine.Options{
		Location:         time.UTC,
		BatchConcurrency: 2,
	})
	svc := service.New(eng, leads, log)
	h := New(svc, enqueue, validator.New(), time.UTC)

	r := gin.New()
	v1 := r.Group("/api/v1", httpkit.TenantResolver())
	v1.POST("/score-batch", h.ScoreBatch)
	v1.POST("/leads/score-all", h.ScoreAllUnscored)
	return r
}

func perform(r *gin.Engine, method, path, tenantID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestScoreAllEnqueuesWhenSchedulerConfigured(t *testing.T) {
	tenantID := uuid.New()
	reasoner := &fakeReasoner{}
	enqueue := &fakeEnqueuer{}
	leads := &fakeLeads{unscored: []leadsrepo.Lead{{ID: uuid.New(), TenantID: tenantID}}}
	r := newTestRouter(t, reasoner, &fakeStore{}, leads, enqueue)

	rec := perform(r, http.MethodPost, "/api/v1/leads/score-all", tenantID.String(), "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	if got := atomic.LoadInt32(&enqueue.calls); got != 1 {
		t.Fatalf("enqueue calls = %d, want 1", got)
	}
	if enqueue.payloads[0].TenantID != tenantID.String() {
		t.Errorf("enqueued tenant = %q, want %q", enqueue.payloads[0].TenantID, tenantID)
	}
	if got := atomic.LoadInt32(&reasoner.calls); got != 0 {
		t.Errorf("reasoner calls = %d, want 0 (run belongs to the worker)", got)
	}
}

func TestScoreAllRunsInlineWithoutScheduler(t *testing.T) {
	tenantID := uuid.New()
	reasoner := &fakeReasoner{}
	store := &fakeStore{}
	leads := &fakeLeads{unscored: []leadsrepo.Lead{
		{ID: uuid.New(), TenantID: tenantID, Name: "Asha", Phone: "+919876543210", ProductInterested: "Personal Loan", LeadSource: "website", Status: leadsrepo.StatusNew},
	}}
	r := newTestRouter(t, reasoner, store, leads, nil)

	rec := perform(r, http.MethodPost, "/api/v1/leads/score-all", tenantID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := atomic.LoadInt32(&reasoner.calls); got != 1 {
		t.Errorf("reasoner calls = %d, want 1", got)
	}
	if got := atomic.LoadInt32(&store.upserts); got != 1 {
		t.Errorf("upserts = %d, want 1", got)
	}
}

func TestScoreBatchReportsUnpersistedLeads(t *testing.T) {
	tenantID := uuid.New()
	leadID := uuid.New()
	store := &fakeStore{upsertErr: errors.New("connection reset")}
	r := newTestRouter(t, &fakeReasoner{}, store, &fakeLeads{}, nil)

	body := `{"leads": [{
		"id": "` + leadID.String() + `",
		"name": "Asha Patel",
		"phone": "+919876543210",
		"productInterested": "Personal Loan",
		"leadSource": "website"
	}]}`
	rec := perform(r, http.MethodPost, "/api/v1/score-batch", tenantID.String(), body)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Error   string `json:"error"`
		Details struct {
			UnpersistedLeadIDs []string `json:"unpersistedLeadIds"`
		} `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Details.UnpersistedLeadIDs) != 1 || resp.Details.UnpersistedLeadIDs[0] != leadID.String() {
		t.Fatalf("unpersistedLeadIds = %v, want [%s]", resp.Details.UnpersistedLeadIDs, leadID)
	}
}
