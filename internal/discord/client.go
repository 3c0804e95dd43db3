// Package discord posts recommendation results to a webhook.
package discord

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// RetryConfig controls retry behavior for webhook posts.
type RetryConfig struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryConfig retries twice with linear backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, Backoff: 500 * time.Millisecond}
}

// WebhookClient sends messages to a Discord webhook. Posts retry on 429
// and 5xx responses and on transport errors.
type WebhookClient struct {
	webhookURL string
	username   string
	retry      RetryConfig
	httpClient *http.Client
	sleep      func(time.Duration)
	logger     *zap.Logger
}

// WebhookConfig holds the client settings.
type WebhookConfig struct {
	WebhookURL string
	// Username overrides the webhook's display name when set.
	Username string
	Retry    RetryConfig
	// HTTPClient defaults to a client with a 10s timeout.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewWebhookClient creates a webhook client.
func NewWebhookClient(cfg WebhookConfig) *WebhookClient {
	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookClient{
		webhookURL: cfg.WebhookURL,
		username:   cfg.Username,
		retry:      retry,
		httpClient: httpClient,
		sleep:      time.Sleep,
		logger:     logger,
	}
}

// Send posts a single message.
func (c *WebhookClient) Send(ctx context.Context, content string) error {
	payload := map[string]string{"content": content}
	if c.username != "" {
		payload["username"] = c.username
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("discord: marshal payload: %w", err)
	}

	for attempt := 1; ; attempt++ {
		status, err := c.post(ctx, body)
		if err == nil && status < 300 {
			return nil
		}

		if attempt >= c.retry.MaxAttempts || (err == nil && !retriableStatus(status)) {
			if err != nil {
				return fmt.Errorf("discord: webhook post: %w", err)
			}
			return fmt.Errorf("discord: webhook post failed with status %d", status)
		}

		c.logger.Warn("discord webhook retry",
			zap.Int("attempt", attempt), zap.Int("status", status), zap.Error(err))
		c.sleep(c.retry.Backoff * time.Duration(attempt))
	}
}

// SendAll posts messages in order, stopping at the first failure.
func (c *WebhookClient) SendAll(ctx context.Context, messages []string) error {
	for i, content := range messages {
		if err := c.Send(ctx, content); err != nil {
			return fmt.Errorf("message %d/%d: %w", i+1, len(messages), err)
		}
	}
	return nil
}

func (c *WebhookClient) post(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode, nil
}

func retriableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
