package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client posts plain-text notifications.
type Client interface {
	Send(ctx context.Context, text string) error
}

// WebhookClient is a resty-backed Client posting {"text": ...} to a webhook
// (Slack, Mattermost and most chat bridges accept this shape).
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewWebhookClient builds a client for the given webhook URL.
func NewWebhookClient(url string) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second)

	return &WebhookClient{httpClient: restyClient, url: url}
}

type webhookError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Send posts the text to the webhook.
func (c *WebhookClient) Send(ctx context.Context, text string) error {
	apiErr := new(webhookError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"text": text}).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		if message == "" {
			message = resp.String()
		}
		return fmt.Errorf("notification webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}
	return nil
}

// Discard drops every notification. It stands in when no webhook is configured.
type Discard struct{}

func (Discard) Send(context.Context, string) error { return nil }
