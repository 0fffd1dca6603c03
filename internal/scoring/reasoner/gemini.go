package reasoner

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"leadpulse_backend/platform/config"
)

// Gemini adapts the Gemini API to the engine's Reasoner interface.
type Gemini struct {
	client *genai.Client
	model  string
	policy Policy
}

func NewGemini(ctx context.Context, cfg config.ReasoningConfig) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetReasoningAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := cfg.GetReasoningModel()
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{
		client: client,
		model:  model,
		policy: policyFrom(cfg),
	}, nil
}

func (g *Gemini) Complete(ctx context.Context, system, user string) ([]byte, error) {
	return completeWithRetry(ctx, g.policy, func(attemptCtx context.Context) ([]byte, error) {
		resp, err := g.client.Models.GenerateContent(attemptCtx, g.model, genai.Text(user), &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			Temperature:       genai.Ptr(float32(defaultTemperature)),
			MaxOutputTokens:   defaultMaxTokens,
			ResponseMIMEType:  "application/json",
		})
		if err != nil {
			return nil, err
		}
		text := resp.Text()
		if text == "" {
			return nil, fmt.Errorf("gemini returned empty response")
		}
		return []byte(text), nil
	})
}
