package engine

import (
	"testing"
	"time"

	"leadpulse_backend/internal/leads/repository"

	"github.com/google/uuid"
)

func TestFallbackScoreAdditiveFactors(t *testing.T) {
	income := "80000"
	employment := "salaried"
	email := "x@example.com"
	city := "Mumbai"
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)

	cases := []struct {
		name string
		lead repository.Lead
		want int
	}{
		{
			name: "bare lead gets base score",
			lead: repository.Lead{ID: uuid.New()},
			want: 30,
		},
		{
			name: "income only",
			lead: repository.Lead{ID: uuid.New(), IncomeLevel: &income},
			want: 50,
		},
		{
			name: "full profile with capped engagement",
			lead: repository.Lead{
				ID:                  uuid.New(),
				IncomeLevel:         &income,
				EmploymentType:      &employment,
				Email:               &email,
				City:                &city,
				NumPastInteractions: 10,
			},
			want: 100,
		},
		{
			name: "two interactions add ten",
			lead: repository.Lead{ID: uuid.New(), NumPastInteractions: 2},
			want: 40,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FallbackScore(tc.lead, now, ist)
			if got.Score != tc.want {
				t.Errorf("score = %d, want %d", got.Score, tc.want)
			}
			if got.Tier != TierForScore(tc.want) {
				t.Errorf("tier = %q, want %q", got.Tier, TierForScore(tc.want))
			}
		})
	}
}

func TestFallbackContactTimeObeysWindow(t *testing.T) {
	lead := repository.Lead{ID: uuid.New()}
	for _, now := range []time.Time{
		time.Date(2024, 1, 15, 3, 0, 0, 0, ist),
		time.Date(2024, 1, 15, 10, 30, 0, 0, ist),
		time.Date(2024, 1, 15, 19, 0, 0, 0, ist),
		time.Date(2024, 1, 15, 23, 0, 0, 0, ist),
	} {
		got := FallbackScore(lead, now, ist)
		hour := got.BestContactTime.In(ist).Hour()
		if hour < 6 || hour >= 20 {
			t.Errorf("now=%v: contact hour %d outside [6,20)", now, hour)
		}
		if got.BestContactTime.Before(now) {
			t.Errorf("now=%v: contact time %v in the past", now, got.BestContactTime)
		}
	}
}

func TestFallbackShapeIsComplete(t *testing.T) {
	got := FallbackScore(repository.Lead{ID: uuid.New()}, time.Date(2024, 1, 15, 10, 0, 0, 0, ist), ist)
	if len(got.SuggestedActions) < 3 || len(got.SuggestedActions) > 5 {
		t.Errorf("suggestedActions = %d entries, want 3-5", len(got.SuggestedActions))
	}
	if got.Reason == "" {
		t.Error("empty reason")
	}
	if got.TextMessagePoints.KeyPoints == nil || got.CallTalkingPoints.KeyTopics == nil {
		t.Error("message point slices are nil")
	}
}
