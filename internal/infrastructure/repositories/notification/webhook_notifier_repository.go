// Package notification delivers alerts to the configured sinks.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
	"github.com/rios0rios0/portetrack/internal/infrastructure/repositories/transport"
)

const maxErrorBody = 512

// webhookPayload is the JSON body posted to the webhook.
type webhookPayload struct {
	Channel string `json:"channel,omitempty"`
	entities.Alert
}

// WebhookNotifierRepository posts alerts as JSON, retrying transient failures.
type WebhookNotifierRepository struct {
	url     string
	channel string
	client  *retryablehttp.Client
}

var _ repositories.NotifierRepository = (*WebhookNotifierRepository)(nil)

// NewWebhookNotifierRepository creates a webhook sink from the settings.
func NewWebhookNotifierRepository(settings entities.NotificationSettings) *WebhookNotifierRepository {
	return &WebhookNotifierRepository{
		url:     settings.WebhookURL,
		channel: settings.Channel,
		client:  transport.NewRetryClient(settings.Retries, settings.Timeout),
	}
}

func (it *WebhookNotifierRepository) Send(ctx context.Context, alert entities.Alert) error {
	body, err := json.Marshal(webhookPayload{Channel: it.channel, Alert: alert})
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, it.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := it.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("webhook returned %s: %s", resp.Status, bytes.TrimSpace(detail))
	}
	return nil
}
