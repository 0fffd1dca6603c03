package engine

import (
	"fmt"
	"strings"
	"time"

	"leadpulse_backend/internal/leads/repository"
)

const (
	notProvided = "Not provided"
	never       = "Never"
)

// SystemPrompt is the fixed instruction sent with every scoring request.
const SystemPrompt = `You are an expert lead scoring AI specializing in financial services in India. Follow these strict guidelines:

1. Comprehensive Lead Analysis (100 points total):

   A. Financial Capacity (~50 points):
      - Monthly income brackets:
        * Rs 1,00,000 and above: 40-50 points
        * Rs 25,000 - Rs 99,999: 30-40 points
        * Below Rs 25,000: 20-35 points
      - Modulate by employment type: business owner > salaried > self-employed > other

   B. Engagement History (~20 points):
      * Multiple positive interactions: 15-20 points
      * Some engagement: 8-14 points
      * No engagement: 0-7 points

   C. Contact Information Completeness (~20 points):
      * Complete contact details (phone, email, address): 15-20 points
      * Partial information: 8-14 points
      * Minimal information: 0-7 points

2. Final Score Interpretation:
   - 81-100: Very High Priority
   - 61-80: High Priority
   - 41-60: Medium Priority
   - 21-40: Low Priority
   - 0-20: Very Low Priority
   The final score is a blended judgment across all factors, not a literal sum.

3. Best Contact Time Rules:
   - Must be in IST (Indian Standard Time)
   - Must be between 6:00 AM and 8:00 PM
   - Must be at least 2 hours in the future
   - Format: "YYYY-MM-DD HH:mm" (24-hour)
   - Consider employment type for timing:
     * Business owners: 10:00 AM - 12:00 PM
     * Salaried professionals: 6:00 PM - 8:00 PM
     * Others: 12:00 PM - 2:00 PM

4. Response Requirements:
   - The reason must reference income level, employment type, engagement
     history, and information completeness
   - Provide actionable, lead-specific insights, never generic filler`

// BuildPrompt assembles the user prompt for one lead. Pure function of its
// inputs; missing optional fields are restated with explicit placeholders,
// never omitted.
func BuildPrompt(lead repository.Lead, now time.Time) string {
	var b strings.Builder

	b.WriteString("As an expert lead scoring AI, analyze this lead and provide a comprehensive scoring and recommendations:\n\n")
	b.WriteString("Lead Information:\n")
	fmt.Fprintf(&b, "Name: %s\n", orPlaceholder(&lead.Name))
	fmt.Fprintf(&b, "Product Interested: %s\n", orPlaceholder(&lead.ProductInterested))
	fmt.Fprintf(&b, "Phone: %s\n", orPlaceholder(&lead.Phone))
	fmt.Fprintf(&b, "Email: %s\n", orPlaceholder(lead.Email))
	fmt.Fprintf(&b, "Address: %s\n", orPlaceholder(lead.Address))
	fmt.Fprintf(&b, "City: %s\n", orPlaceholder(lead.City))
	fmt.Fprintf(&b, "State: %s\n", orPlaceholder(lead.State))
	fmt.Fprintf(&b, "Pincode: %s\n", orPlaceholder(lead.Pincode))
	fmt.Fprintf(&b, "Income Level: %s\n", orPlaceholder(lead.IncomeLevel))
	fmt.Fprintf(&b, "Employment Type: %s\n", orPlaceholder(lead.EmploymentType))
	fmt.Fprintf(&b, "Lead Source: %s\n", orPlaceholder(&lead.LeadSource))
	fmt.Fprintf(&b, "Last Contacted: %s\n", formatLastContacted(lead.LastContacted))
	fmt.Fprintf(&b, "Contact Method: %s\n", orPlaceholder(lead.ContactMethod))
	fmt.Fprintf(&b, "Past Interactions: %d\n", lead.NumPastInteractions)
	fmt.Fprintf(&b, "Status: %s\n", orPlaceholder(&lead.Status))
	fmt.Fprintf(&b, "Notes: %s\n", orPlaceholder(lead.ShortNotes))
	fmt.Fprintf(&b, "\nCurrent Time: %s\n", now.Format(time.RFC3339))

	b.WriteString(`
Please analyze this lead and provide:
1. A score from 0-100 following the scoring criteria in your instructions.
2. Best time to contact (IST, between 6:00 AM and 8:00 PM, at least 2 hours
   in the future, format "YYYY-MM-DD HH:mm" in 24-hour notation).
3. Detailed reasoning covering income level, employment type and stability,
   product interest, engagement history, and contact information completeness.
4. 3-5 specific recommended actions to take with this lead.
5. Text message points: 2-4 concrete, personalized message points addressing
   the lead's specific context. Avoid generic phrases.
6. Call talking points: a personalized opening, the key topics to discuss,
   likely objections with responses, and a positive closing.

Format the response as JSON with these fields:
{
  "score": number,
  "reason": string,
  "bestContactTime": string,
  "suggestedActions": string[],
  "textMessagePoints": {
    "keyPoints": string[],
    "tone": string,
    "avoidMentioning": string[],
    "closing": string
  },
  "callTalkingPoints": {
    "opening": string,
    "keyTopics": string[],
    "objectionHandling": string[],
    "closing": string
  }
}
`)

	return b.String()
}

func orPlaceholder(value *string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return notProvided
	}
	return *value
}

func formatLastContacted(t *time.Time) string {
	if t == nil {
		return never
	}
	return t.Format(time.RFC3339)
}
