// Package alert posts operational alerts to an external webhook.
package alert

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Alert is the JSON payload delivered to the alert webhook.
type Alert struct {
	Alert               string `json:"alert"`
	RunNumber           int64  `json:"runNumber"`
	ConsecutiveFailures int    `json:"consecutiveFailures"`
	MessagesInBatch     int    `json:"messagesInBatch"`
	Timestamp           string `json:"timestamp"`
	Message             string `json:"message"`
}

type Client struct {
	httpClient *resty.Client
	webhookURL string
}

func NewClient(webhookURL string, timeout time.Duration) *Client {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient: client,
		webhookURL: webhookURL,
	}
}

// Send posts the alert; only 200 and 204 count as delivered.
func (c *Client) Send(ctx context.Context, a Alert) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(a).
		Post(c.webhookURL)
	if err != nil {
		return fmt.Errorf("failed to send alert to webhook: %w", err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return fmt.Errorf("alert webhook returned status %d", resp.StatusCode())
	}

	return nil
}

func (c *Client) GetURL() string {
	return c.webhookURL
}
