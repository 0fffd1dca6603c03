package engine

import (
	"strings"
	"testing"
	"time"

	"leadpulse_backend/internal/leads/repository"

	"github.com/google/uuid"
)

func TestBuildPromptRestatesAllFields(t *testing.T) {
	income := "120000"
	employment := "business owner"
	email := "asha@example.com"
	city := "Pune"
	notes := "Asked about tenure options"
	contacted := time.Date(2024, 1, 10, 14, 0, 0, 0, ist)
	lead := repository.Lead{
		ID:                  uuid.New(),
		TenantID:            uuid.New(),
		Name:                "Asha Patel",
		Phone:               "+919876543210",
		Email:               &email,
		City:                &city,
		ProductInterested:   "Home Loan",
		IncomeLevel:         &income,
		EmploymentType:      &employment,
		LeadSource:          "referral",
		NumPastInteractions: 3,
		LastContacted:       &contacted,
		Status:              repository.StatusContacted,
		ShortNotes:          &notes,
	}
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)

	prompt := BuildPrompt(lead, now)
	for _, want := range []string{
		"Asha Patel",
		"Home Loan",
		"+919876543210",
		"asha@example.com",
		"Pune",
		"120000",
		"business owner",
		"referral",
		"Past Interactions: 3",
		"Asked about tenure options",
		now.Format(time.RFC3339),
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptPlaceholdersForMissingFields(t *testing.T) {
	lead := repository.Lead{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Name:     "Ravi",
		Phone:    "+919876543210",
		Status:   repository.StatusNew,
	}
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)

	prompt := BuildPrompt(lead, now)
	if !strings.Contains(prompt, "Email: Not provided") {
		t.Error("missing email placeholder")
	}
	if !strings.Contains(prompt, "Income Level: Not provided") {
		t.Error("missing income placeholder")
	}
	if !strings.Contains(prompt, "Last Contacted: Never") {
		t.Error("missing last-contacted placeholder")
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	lead := testLead("Same Lead")
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, ist)
	if BuildPrompt(lead, now) != BuildPrompt(lead, now) {
		t.Error("prompt differs between identical calls")
	}
}

func TestSystemPromptCarriesRubric(t *testing.T) {
	for _, want := range []string{
		"40-50 points",
		"business owner > salaried > self-employed > other",
		"Very High Priority",
		"6:00 AM and 8:00 PM",
		"at least 2 hours in the future",
	} {
		if !strings.Contains(SystemPrompt, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}
