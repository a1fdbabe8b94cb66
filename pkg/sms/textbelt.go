package sms

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/onurcolak/sms-scheduler/environments"
	"github.com/onurcolak/sms-scheduler/internal/domain"
	"github.com/onurcolak/sms-scheduler/pkg/logger"
)

const ProviderTextBelt = "textbelt"

type TextBeltProvider struct {
	httpClient *resty.Client
	apiKey     string
}

func NewTextBeltProvider(cfg environments.TextBeltConfig, timeout time.Duration) *TextBeltProvider {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &TextBeltProvider{
		httpClient: client,
		apiKey:     cfg.APIKey,
	}
}

func (p *TextBeltProvider) Name() string {
	return ProviderTextBelt
}

// Send posts the message to /text. TextBelt answers 200 for rejected messages too,
// so the outcome is read from the "success" field.
func (p *TextBeltProvider) Send(ctx context.Context, to, body string) (*domain.SendReceipt, error) {
	startTime := time.Now()

	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"phone":   to,
			"message": body,
			"key":     p.apiKey,
		}).
		Post("/text")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	logger.Infof("TextBelt request completed in %v (status: %d)", time.Since(startTime), resp.StatusCode())

	if !gjson.ValidBytes(resp.Body()) {
		return nil, fmt.Errorf("failed to parse TextBelt response (status %d): %s", resp.StatusCode(), resp.String())
	}

	payload := gjson.ParseBytes(resp.Body())
	if !payload.Get("success").Bool() {
		message := payload.Get("error").String()
		if message == "" {
			message = "Unknown error"
		}
		return nil, &ProviderError{
			Provider:   "TextBelt",
			StatusCode: resp.StatusCode(),
			Message:    message,
		}
	}

	return &domain.SendReceipt{
		Provider:          ProviderTextBelt,
		ProviderMessageID: payload.Get("textId").String(),
		Details: map[string]string{
			"quotaRemaining": payload.Get("quotaRemaining").String(),
		},
	}, nil
}

// Quota returns the number of messages left on the API key.
func (p *TextBeltProvider) Quota(ctx context.Context) (int64, error) {
	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetPathParam("key", p.apiKey).
		Get("/quota/{key}")
	if err != nil {
		return 0, fmt.Errorf("failed to fetch quota: %w", err)
	}

	payload := gjson.ParseBytes(resp.Body())
	if resp.StatusCode() != http.StatusOK {
		message := payload.Get("error").String()
		if message == "" {
			message = "Unknown error"
		}
		return 0, &ProviderError{Provider: "TextBelt", StatusCode: resp.StatusCode(), Message: message}
	}

	return payload.Get("quotaRemaining").Int(), nil
}
