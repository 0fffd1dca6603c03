// Package whatsapp is a thin client for the WhatsApp gateway used for
// lead outreach.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leadpulse_backend/platform/config"
	"leadpulse_backend/platform/logger"
	"leadpulse_backend/platform/phone"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logger.Logger
}

type sendRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// NewClient creates a gateway client, or nil when no gateway is
// configured. A nil client swallows sends so the rest of the app keeps
// working without WhatsApp.
func NewClient(cfg config.WhatsAppConfig, log *logger.Logger) *Client {
	if !cfg.IsWhatsAppEnabled() {
		return nil
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.GetWhatsAppURL(), "/"),
		token:   cfg.GetWhatsAppToken(),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// SendMessage delivers one text message to a phone number.
func (c *Client) SendMessage(ctx context.Context, phoneNumber, message string) error {
	if c == nil {
		return nil
	}

	to := phone.Digits(phoneNumber)
	body, err := json.Marshal(sendRequest{To: to, Body: message})
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/messages/chat?token=%s", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Info("whatsapp message sent", "to", to)
	return nil
}
