package engine

import (
	"time"

	"leadpulse_backend/internal/leads/repository"
)

// FallbackScore produces a degraded heuristic assessment when the reasoning
// service is unreachable. Additive points over the data we actually hold,
// so agents still get a workable priority ordering instead of an error.
func FallbackScore(lead repository.Lead, now time.Time, loc *time.Location) Assessment {
	score := 30
	if lead.IncomeLevel != nil && *lead.IncomeLevel != "" {
		score += 20
	}
	if lead.EmploymentType != nil && *lead.EmploymentType != "" {
		score += 15
	}
	if lead.Email != nil && *lead.Email != "" {
		score += 10
	}
	if lead.City != nil && *lead.City != "" {
		score += 10
	}
	engagement := lead.NumPastInteractions * 5
	if engagement > 15 {
		engagement = 15
	}
	score += engagement

	contactTime := clampToWindow(ceilToHour(now.In(loc).Add(2*time.Hour), loc), loc)

	return Assessment{
		Score:           score,
		Tier:            TierForScore(score),
		Reason:          "Basic scoring applied because the reasoning service was unavailable. Score reflects recorded income level, employment type, engagement history, and contact detail completeness. Manual review recommended.",
		BestContactTime: contactTime,
		SuggestedActions: []string{
			"Call the lead to verify interest and financial details",
			"Confirm income and employment information on record",
			"Schedule a follow-up once complete details are captured",
		},
		TextMessagePoints: TextMessagePoints{
			KeyPoints:       []string{"Follow up on the product the lead enquired about", "Offer to answer any open questions"},
			Tone:            "professional and friendly",
			AvoidMentioning: []string{},
			Closing:         "Looking forward to speaking with you.",
		},
		CallTalkingPoints: CallTalkingPoints{
			Opening:           "Introduce yourself and reference the lead's product enquiry",
			KeyTopics:         []string{"Product fit", "Income and eligibility", "Next steps"},
			ObjectionHandling: []string{"If timing is a concern, offer a callback at the lead's convenience"},
			Closing:           "Agree on a concrete next step before ending the call",
		},
	}
}
