package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"leadpulse_backend/internal/leads/repository"
	"leadpulse_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeReasoner struct {
	mu      sync.Mutex
	calls   int32
	respond func(lead string) ([]byte, error)
	seen    []string
}

func (f *fakeReasoner) Complete(ctx context.Context, system, user string) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.seen = append(f.seen, user)
	f.mu.Unlock()
	return f.respond(user)
}

type fakeStore struct {
	mu        sync.Mutex
	upserts   []ScoringResult
	upsertErr error
	existing  map[uuid.UUID]*ScoringResult
}

func (f *fakeStore) Upsert(ctx context.Context, result ScoringResult) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, result)
	return nil
}

func (f *fakeStore) GetExisting(ctx context.Context, tenantID, leadID uuid.UUID) (*ScoringResult, error) {
	return f.existing[leadID], nil
}

func testLead(name string) repository.Lead {
	income := "75000"
	employment := "salaried"
	return repository.Lead{
		ID:                uuid.New(),
		TenantID:          uuid.New(),
		Name:              name,
		Phone:             "+919876543210",
		ProductInterested: "Personal Loan",
		IncomeLevel:       &income,
		EmploymentType:    &employment,
		LeadSource:        "website",
		Status:            repository.StatusNew,
	}
}

func goodResponse() []byte {
	return validPayload(map[string]any{"bestContactTime": "2024-01-15 18:00"})
}

func newTestEngine(r Reasoner, s Store, fallback bool) *Engine {
	return New(r, s, logger.New("test"), Options{
		Location:         ist,
		BatchConcurrency: 4,
		FallbackEnabled:  fallback,
	})
}

func TestScorePersistsResult(t *testing.T) {
	reasoner := &fakeReasoner{respond: func(string) ([]byte, error) { return goodResponse(), nil }}
	store := &fakeStore{}
	eng := newTestEngine(reasoner, store, false)
	lead := testLead("Asha Patel")
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)

	result, err := eng.Score(context.Background(), lead, now)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.LeadID != lead.ID || result.TenantID != lead.TenantID {
		t.Errorf("result keyed to %v/%v, want %v/%v", result.TenantID, result.LeadID, lead.TenantID, lead.ID)
	}
	if len(store.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(store.upserts))
	}
	if store.upserts[0].Score != 72 {
		t.Errorf("persisted score = %d, want 72", store.upserts[0].Score)
	}
}

func TestScoreSurfacesMalformedWithoutFallback(t *testing.T) {
	reasoner := &fakeReasoner{respond: func(string) ([]byte, error) {
		return []byte(`{"score": 150}`), nil
	}}
	store := &fakeStore{}
	eng := newTestEngine(reasoner, store, true)
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)

	_, err := eng.Score(context.Background(), testLead("Ravi"), now)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
	if len(store.upserts) != 0 {
		t.Errorf("upserts = %d, want 0", len(store.upserts))
	}
}

func TestScoreFallsBackWhenUnavailable(t *testing.T) {
	reasoner := &fakeReasoner{respond: func(string) ([]byte, error) {
		return nil, fmt.Errorf("%w: connection refused", ErrUnavailable)
	}}
	store := &fakeStore{}
	eng := newTestEngine(reasoner, store, true)
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)

	result, err := eng.Score(context.Background(), testLead("Meena"), now)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	// income 20 + employment 15 + base 30
	if result.Score != 65 {
		t.Errorf("fallback score = %d, want 65", result.Score)
	}
	if !strings.Contains(result.Reason, "Manual review recommended") {
		t.Errorf("fallback reason = %q", result.Reason)
	}
	if len(store.upserts) != 1 {
		t.Errorf("upserts = %d, want 1", len(store.upserts))
	}
}

func TestScoreNoFallbackWhenDisabled(t *testing.T) {
	reasoner := &fakeReasoner{respond: func(string) ([]byte, error) {
		return nil, fmt.Errorf("%w: connection refused", ErrUnavailable)
	}}
	eng := newTestEngine(reasoner, &fakeStore{}, false)
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)

	_, err := eng.Score(context.Background(), testLead("Meena"), now)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestScoreBatchPartialFailure(t *testing.T) {
	bad := testLead("Broken")
	reasoner := &fakeReasoner{respond: func(user string) ([]byte, error) {
		if strings.Contains(user, "Broken") {
			return []byte(`{"score": "oops"}`), nil
		}
		return goodResponse(), nil
	}}
	store := &fakeStore{}
	eng := newTestEngine(reasoner, store, false)
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)

	leads := []BatchLead{
		{Lead: testLead("Scored A"), AlreadyScored: true},
		{Lead: testLead("Scored B"), AlreadyScored: true},
		{Lead: bad},
		{Lead: testLead("Fresh A")},
		{Lead: testLead("Fresh B")},
	}

	batch, err := eng.ScoreBatch(context.Background(), leads, now)
	if err != nil {
		t.Fatalf("ScoreBatch: %v", err)
	}
	if len(batch.Results) != 2 {
		t.Errorf("results = %d, want 2", len(batch.Results))
	}
	if len(batch.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(batch.Errors))
	}
	if batch.Errors[0].LeadID != bad.ID {
		t.Errorf("error leadID = %v, want %v", batch.Errors[0].LeadID, bad.ID)
	}
	if !errors.Is(batch.Errors[0].Err, ErrMalformedResponse) {
		t.Errorf("error = %v, want ErrMalformedResponse", batch.Errors[0].Err)
	}
	if batch.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", batch.Skipped)
	}
	if got := atomic.LoadInt32(&reasoner.calls); got != 3 {
		t.Errorf("reasoner calls = %d, want 3 (skipped leads must never reach it)", got)
	}
	if len(store.upserts) != 2 {
		t.Errorf("upserts = %d, want 2", len(store.upserts))
	}
}

func TestScoreBatchSkippedLeadsNeverPrompted(t *testing.T) {
	skipped := testLead("Do Not Call")
	reasoner := &fakeReasoner{respond: func(string) ([]byte, error) { return goodResponse(), nil }}
	eng := newTestEngine(reasoner, &fakeStore{}, false)
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)

	_, err := eng.ScoreBatch(context.Background(), []BatchLead{
		{Lead: skipped, AlreadyScored: true},
		{Lead: testLead("Fresh")},
	}, now)
	if err != nil {
		t.Fatalf("ScoreBatch: %v", err)
	}
	for _, prompt := range reasoner.seen {
		if strings.Contains(prompt, "Do Not Call") {
			t.Fatal("already-scored lead was sent to the reasoning service")
		}
	}
}

func TestScoreBatchPersistenceFailureIsFatal(t *testing.T) {
	reasoner := &fakeReasoner{respond: func(string) ([]byte, error) { return goodResponse(), nil }}
	store := &fakeStore{upsertErr: errors.New("connection reset")}
	eng := newTestEngine(reasoner, store, false)
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)

	batch, err := eng.ScoreBatch(context.Background(), []BatchLead{
		{Lead: testLead("A")},
		{Lead: testLead("B")},
	}, now)
	if err == nil {
		t.Fatal("expected persistence error")
	}
	// Computed results still reported so the caller knows what was lost.
	if len(batch.Results) != 2 {
		t.Errorf("results = %d, want 2", len(batch.Results))
	}
	if len(batch.Unpersisted) != 2 {
		t.Fatalf("unpersisted = %d, want 2", len(batch.Unpersisted))
	}
	for i, result := range batch.Results {
		if batch.Unpersisted[i] != result.LeadID {
			t.Errorf("unpersisted[%d] = %v, want %v", i, batch.Unpersisted[i], result.LeadID)
		}
	}
}

func TestAssessDoesNotPersist(t *testing.T) {
	reasoner := &fakeReasoner{respond: func(string) ([]byte, error) { return goodResponse(), nil }}
	store := &fakeStore{}
	eng := newTestEngine(reasoner, store, false)
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)

	result, err := eng.Assess(context.Background(), testLead("Asha Patel"), now)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if result.Score != 72 {
		t.Errorf("score = %d, want 72", result.Score)
	}
	if len(store.upserts) != 0 {
		t.Errorf("upserts = %d, want 0", len(store.upserts))
	}
}

func TestScoreBatchHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reasoner := &fakeReasoner{respond: func(string) ([]byte, error) { return goodResponse(), nil }}
	eng := newTestEngine(reasoner, &fakeStore{}, false)
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)

	_, err := eng.ScoreBatch(ctx, []BatchLead{{Lead: testLead("A")}}, now)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
