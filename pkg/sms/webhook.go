package sms

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/onurcolak/sms-scheduler/environments"
	"github.com/onurcolak/sms-scheduler/internal/domain"
	"github.com/onurcolak/sms-scheduler/pkg/logger"
)

const ProviderWebhook = "webhook"

type webhookRequest struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

type webhookResponse struct {
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

// WebhookProvider hands messages to a generic HTTP gateway that answers 202 Accepted.
type WebhookProvider struct {
	httpClient *resty.Client
	webhookURL string
}

func NewWebhookProvider(cfg environments.WebhookConfig, timeout time.Duration) *WebhookProvider {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Auth-Key", cfg.AuthKey)

	return &WebhookProvider{
		httpClient: client,
		webhookURL: cfg.URL,
	}
}

func (p *WebhookProvider) Name() string {
	return ProviderWebhook
}

// Send reuses one Idempotency-Key across resty retries of the same message.
func (p *WebhookProvider) Send(ctx context.Context, to, body string) (*domain.SendReceipt, error) {
	payload := webhookRequest{
		To:      to,
		Content: body,
	}

	var webhookResp webhookResponse

	startTime := time.Now()

	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", uuid.New().String()).
		SetBody(payload).
		SetResult(&webhookResp).
		Post(p.webhookURL)

	duration := time.Since(startTime)

	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	logger.Infof("Webhook request to %s completed in %v (status: %d)", p.webhookURL, duration, resp.StatusCode())

	if resp.StatusCode() != http.StatusAccepted {
		return nil, fmt.Errorf("unexpected status code: %d (expected 202), body: %s", resp.StatusCode(), resp.String())
	}

	return &domain.SendReceipt{
		Provider:          ProviderWebhook,
		ProviderMessageID: webhookResp.MessageID,
		Details:           map[string]string{"message": webhookResp.Message},
	}, nil
}

func (p *WebhookProvider) GetURL() string {
	return p.webhookURL
}
