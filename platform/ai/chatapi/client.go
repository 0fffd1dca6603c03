// Package chatapi provides a minimal client for OpenAI-compatible
// chat-completion endpoints. This is part of the platform layer and
// contains no business logic.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Config for an OpenAI-compatible chat endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client speaks the chat-completions wire format.
type Client struct {
	config Config
	client *http.Client
}

// New creates a chat client. The http.Client carries no timeout of its own;
// callers bound each request through the context.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &Client{
		config: cfg,
		client: &http.Client{},
	}
}

// Request describes a single chat completion.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	JSONObject  bool
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatPayload struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error interface{} `json:"error"`
}

// Complete performs one chat completion and returns the raw text content.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	payload := chatPayload{
		Model:       c.config.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
	}
	if req.JSONObject {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return "", fmt.Errorf("chat api status %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("chat api error: %v", result.Error)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("chat api error: empty choices")
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("chat api error: empty content")
	}
	return content, nil
}
