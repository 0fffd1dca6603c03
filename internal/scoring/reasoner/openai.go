// Package reasoner provides reasoning-service adapters for the scoring
// engine. Each adapter owns its retry and deadline policy and wraps
// transport failures with the engine's sentinel errors.
package reasoner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadpulse_backend/internal/scoring/engine"
	"leadpulse_backend/platform/ai/chatapi"
	"leadpulse_backend/platform/config"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1200
)

// Policy is the explicit retry and deadline policy shared by the adapters.
type Policy struct {
	MaxAttempts int
	Timeout     time.Duration
	Backoff     time.Duration
}

func policyFrom(cfg config.ReasoningConfig) Policy {
	p := Policy{
		MaxAttempts: cfg.GetReasoningMaxAttempts(),
		Timeout:     cfg.GetReasoningTimeout(),
		Backoff:     time.Second,
	}
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 3
	}
	if p.Timeout <= 0 {
		p.Timeout = 30 * time.Second
	}
	return p
}

// chatCompleter is satisfied by chatapi.Client; swapped for a fake in tests.
type chatCompleter interface {
	Complete(ctx context.Context, req chatapi.Request) (string, error)
}

// OpenAI adapts an OpenAI-compatible chat endpoint to the engine's
// Reasoner interface.
type OpenAI struct {
	client chatCompleter
	policy Policy
}

func NewOpenAI(cfg config.ReasoningConfig) *OpenAI {
	return &OpenAI{
		client: chatapi.New(chatapi.Config{
			APIKey:  cfg.GetReasoningAPIKey(),
			BaseURL: cfg.GetReasoningBaseURL(),
			Model:   cfg.GetReasoningModel(),
		}),
		policy: policyFrom(cfg),
	}
}

func (o *OpenAI) Complete(ctx context.Context, system, user string) ([]byte, error) {
	return completeWithRetry(ctx, o.policy, func(attemptCtx context.Context) ([]byte, error) {
		content, err := o.client.Complete(attemptCtx, chatapi.Request{
			System:      system,
			User:        user,
			Temperature: defaultTemperature,
			MaxTokens:   defaultMaxTokens,
			JSONObject:  true,
		})
		if err != nil {
			return nil, err
		}
		return []byte(content), nil
	})
}

// completeWithRetry runs one reasoning call under the policy: each attempt
// gets its own deadline, transient failures back off linearly, and the
// final failure is wrapped with the matching engine sentinel. The caller's
// context cancellation always wins over further attempts.
func completeWithRetry(ctx context.Context, policy Policy, call func(context.Context) ([]byte, error)) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, policy.Timeout)
		raw, err := call(attemptCtx)
		cancel()
		if err == nil {
			return raw, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt < policy.MaxAttempts {
			select {
			case <-time.After(time.Duration(attempt) * policy.Backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	if errors.Is(lastErr, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %v", engine.ErrTimeout, lastErr)
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", engine.ErrUnavailable, policy.MaxAttempts, lastErr)
}
