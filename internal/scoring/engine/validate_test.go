package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

func validPayload(overrides map[string]any) []byte {
	payload := map[string]any{
		"score":           72,
		"reason":          "Strong income, salaried employment, repeated engagement, complete contact details",
		"bestContactTime": "2024-01-15 18:00",
		"suggestedActions": []string{
			"Call during evening hours",
			"Share personal loan eligibility details",
			"Send a follow-up message with rates",
		},
		"textMessagePoints": map[string]any{
			"keyPoints":       []string{"Pre-approved offer", "Competitive rates"},
			"tone":            "professional",
			"avoidMentioning": []string{"processing fees"},
			"closing":         "Reply to know more.",
		},
		"callTalkingPoints": map[string]any{
			"opening":           "Reference the personal loan enquiry",
			"keyTopics":         []string{"Eligibility", "Tenure options"},
			"objectionHandling": []string{"Offer a callback if busy"},
			"closing":           "Confirm the next step",
		},
	}
	for k, v := range overrides {
		if v == nil {
			delete(payload, k)
		} else {
			payload[k] = v
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return raw
}

func TestValidateAndRepairValidPayload(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)
	got, err := ValidateAndRepair(validPayload(nil), now, ist)
	if err != nil {
		t.Fatalf("ValidateAndRepair: %v", err)
	}
	if got.Score != 72 {
		t.Errorf("score = %d, want 72", got.Score)
	}
	if got.Tier != TierHigh {
		t.Errorf("tier = %q, want %q", got.Tier, TierHigh)
	}
	want := time.Date(2024, 1, 15, 18, 0, 0, 0, ist)
	if !got.BestContactTime.Equal(want) {
		t.Errorf("bestContactTime = %v, want %v (already valid, must not change)", got.BestContactTime, want)
	}
	if len(got.SuggestedActions) != 3 {
		t.Errorf("suggestedActions = %d entries, want 3", len(got.SuggestedActions))
	}
}

func TestRepairPastContactTime(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)
	got, err := ValidateAndRepair(validPayload(map[string]any{"bestContactTime": "2024-01-15 09:00"}), now, ist)
	if err != nil {
		t.Fatalf("ValidateAndRepair: %v", err)
	}
	want := time.Date(2024, 1, 15, 12, 0, 0, 0, ist)
	if !got.BestContactTime.Equal(want) {
		t.Errorf("bestContactTime = %v, want %v", got.BestContactTime, want)
	}
}

func TestRepairCeilsToNextHourWithHalfHourOffset(t *testing.T) {
	// IST is UTC+5:30; the next whole hour must be taken on the wall
	// clock, not on the UTC instant.
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, ist)
	got, err := ValidateAndRepair(validPayload(map[string]any{"bestContactTime": "2024-01-15 09:00"}), now, ist)
	if err != nil {
		t.Fatalf("ValidateAndRepair: %v", err)
	}
	want := time.Date(2024, 1, 15, 13, 0, 0, 0, ist)
	if !got.BestContactTime.Equal(want) {
		t.Errorf("bestContactTime = %v, want %v", got.BestContactTime, want)
	}
}

func TestRepairLateEveningRollsToNextMorning(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)
	got, err := ValidateAndRepair(validPayload(map[string]any{"bestContactTime": "2024-01-15 22:00"}), now, ist)
	if err != nil {
		t.Fatalf("ValidateAndRepair: %v", err)
	}
	want := time.Date(2024, 1, 16, 6, 0, 0, 0, ist)
	if !got.BestContactTime.Equal(want) {
		t.Errorf("bestContactTime = %v, want %v", got.BestContactTime, want)
	}
}

func TestRepairEarlyMorningSnapsToWindowOpen(t *testing.T) {
	now := time.Date(2024, 1, 15, 22, 0, 0, 0, ist)
	got, err := ValidateAndRepair(validPayload(map[string]any{"bestContactTime": "2024-01-16 04:00"}), now, ist)
	if err != nil {
		t.Fatalf("ValidateAndRepair: %v", err)
	}
	want := time.Date(2024, 1, 16, 6, 0, 0, 0, ist)
	if !got.BestContactTime.Equal(want) {
		t.Errorf("bestContactTime = %v, want %v", got.BestContactTime, want)
	}
}

func TestContactTimeInvariants(t *testing.T) {
	nows := []time.Time{
		time.Date(2024, 1, 15, 3, 15, 0, 0, ist),
		time.Date(2024, 1, 15, 10, 0, 0, 0, ist),
		time.Date(2024, 1, 15, 17, 45, 0, 0, ist),
		time.Date(2024, 1, 15, 19, 30, 0, 0, ist),
		time.Date(2024, 1, 15, 23, 59, 0, 0, ist),
	}
	candidates := []string{
		"2024-01-14 09:00",
		"2024-01-15 00:30",
		"2024-01-15 05:59",
		"2024-01-15 20:00",
		"2024-01-15 23:00",
		"2024-01-20 14:00",
	}
	for _, now := range nows {
		for _, candidate := range candidates {
			got, err := ValidateAndRepair(validPayload(map[string]any{"bestContactTime": candidate}), now, ist)
			if err != nil {
				t.Fatalf("now=%v candidate=%q: %v", now, candidate, err)
			}
			hour := got.BestContactTime.In(ist).Hour()
			if hour < 6 || hour >= 20 {
				t.Errorf("now=%v candidate=%q: hour %d outside [6,20)", now, candidate, hour)
			}
			if got.BestContactTime.Before(now.Add(2 * time.Hour)) {
				t.Errorf("now=%v candidate=%q: repaired time %v below now+2h", now, candidate, got.BestContactTime)
			}
		}
	}
}

func TestRepairDeterminism(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 17, 0, 0, ist)
	payload := validPayload(map[string]any{"bestContactTime": "2024-01-15 08:00"})
	first, err := ValidateAndRepair(payload, now, ist)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := ValidateAndRepair(payload, now, ist)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !first.BestContactTime.Equal(second.BestContactTime) {
		t.Errorf("repair not deterministic: %v vs %v", first.BestContactTime, second.BestContactTime)
	}
}

func TestScoreOutOfRangeRejected(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)
	for _, score := range []any{150, -5, 100.6, "eighty", nil} {
		_, err := ValidateAndRepair(validPayload(map[string]any{"score": score}), now, ist)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("score=%v: err = %v, want ErrMalformedResponse", score, err)
		}
	}
}

func TestScoreRounding(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)
	got, err := ValidateAndRepair(validPayload(map[string]any{"score": 82.6}), now, ist)
	if err != nil {
		t.Fatalf("ValidateAndRepair: %v", err)
	}
	if got.Score != 83 {
		t.Errorf("score = %d, want 83", got.Score)
	}
	if got.Tier != TierVeryHigh {
		t.Errorf("tier = %q, want %q", got.Tier, TierVeryHigh)
	}
}

func TestRequiredFieldRejection(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)
	cases := map[string]map[string]any{
		"missing score":        {"score": nil},
		"missing reason":       {"reason": nil},
		"empty reason":         {"reason": "   "},
		"reason wrong type":    {"reason": 42},
		"missing contact time": {"bestContactTime": nil},
		"bad time format":      {"bestContactTime": "15/01/2024 6pm"},
		"time with seconds":    {"bestContactTime": "2024-01-15 18:00:00"},
		"impossible date":      {"bestContactTime": "2024-13-45 18:00"},
		"missing actions":      {"suggestedActions": nil},
		"actions wrong type":   {"suggestedActions": "call them"},
	}
	for name, overrides := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateAndRepair(validPayload(overrides), now, ist)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("err = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestActionCountBounds(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)
	for _, n := range []int{0, 1, 2, 6, 7} {
		actions := make([]string, n)
		for i := range actions {
			actions[i] = fmt.Sprintf("action %d", i+1)
		}
		_, err := ValidateAndRepair(validPayload(map[string]any{"suggestedActions": actions}), now, ist)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("len=%d: err = %v, want ErrMalformedResponse", n, err)
		}
	}
	for _, n := range []int{3, 4, 5} {
		actions := make([]string, n)
		for i := range actions {
			actions[i] = fmt.Sprintf("action %d", i+1)
		}
		if _, err := ValidateAndRepair(validPayload(map[string]any{"suggestedActions": actions}), now, ist); err != nil {
			t.Errorf("len=%d: unexpected err %v", n, err)
		}
	}
}

func TestNotJSONRejected(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)
	for _, raw := range []string{"", "not json", `"just a string"`, `[1,2,3]`} {
		_, err := ValidateAndRepair([]byte(raw), now, ist)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("raw=%q: err = %v, want ErrMalformedResponse", raw, err)
		}
	}
}

func TestOptionalFieldsDefaulted(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)
	got, err := ValidateAndRepair(validPayload(map[string]any{
		"textMessagePoints": nil,
		"callTalkingPoints": nil,
	}), now, ist)
	if err != nil {
		t.Fatalf("ValidateAndRepair: %v", err)
	}
	if got.TextMessagePoints.KeyPoints == nil || len(got.TextMessagePoints.KeyPoints) != 0 {
		t.Errorf("keyPoints = %v, want empty slice", got.TextMessagePoints.KeyPoints)
	}
	if got.TextMessagePoints.AvoidMentioning == nil {
		t.Error("avoidMentioning is nil, want empty slice")
	}
	if got.CallTalkingPoints.Opening != "" || got.CallTalkingPoints.Closing != "" {
		t.Errorf("callTalkingPoints strings not empty: %+v", got.CallTalkingPoints)
	}
	if got.CallTalkingPoints.KeyTopics == nil || got.CallTalkingPoints.ObjectionHandling == nil {
		t.Error("callTalkingPoints slices are nil, want empty slices")
	}
}

func TestOptionalFieldsPartialShape(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)
	got, err := ValidateAndRepair(validPayload(map[string]any{
		"textMessagePoints": map[string]any{
			"keyPoints": []string{"Offer details"},
			"tone":      7,
		},
		"callTalkingPoints": "call them nicely",
	}), now, ist)
	if err != nil {
		t.Fatalf("ValidateAndRepair: %v", err)
	}
	if len(got.TextMessagePoints.KeyPoints) != 1 || got.TextMessagePoints.KeyPoints[0] != "Offer details" {
		t.Errorf("keyPoints = %v, want [Offer details]", got.TextMessagePoints.KeyPoints)
	}
	if got.TextMessagePoints.Tone != "" {
		t.Errorf("tone = %q, want empty (wrong type ignored)", got.TextMessagePoints.Tone)
	}
	if got.CallTalkingPoints.KeyTopics == nil || len(got.CallTalkingPoints.KeyTopics) != 0 {
		t.Errorf("keyTopics = %v, want empty slice", got.CallTalkingPoints.KeyTopics)
	}
}

func TestTierForScore(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, TierVeryLow},
		{20, TierVeryLow},
		{21, TierLow},
		{40, TierLow},
		{41, TierMedium},
		{60, TierMedium},
		{61, TierHigh},
		{80, TierHigh},
		{81, TierVeryHigh},
		{100, TierVeryHigh},
	}
	for _, tc := range cases {
		if got := TierForScore(tc.score); got != tc.want {
			t.Errorf("TierForScore(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
