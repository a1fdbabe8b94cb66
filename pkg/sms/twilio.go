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

const ProviderTwilio = "twilio"

type TwilioProvider struct {
	httpClient *resty.Client
	accountSID string
	fromNumber string
}

func NewTwilioProvider(cfg environments.TwilioConfig, timeout time.Duration) *TwilioProvider {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json")

	return &TwilioProvider{
		httpClient: client,
		accountSID: cfg.AccountSID,
		fromNumber: cfg.FromNumber,
	}
}

func (p *TwilioProvider) Name() string {
	return ProviderTwilio
}

func (p *TwilioProvider) Send(ctx context.Context, to, body string) (*domain.SendReceipt, error) {
	startTime := time.Now()

	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":   to,
			"From": p.fromNumber,
			"Body": body,
		}).
		Post(fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", p.accountSID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	logger.Infof("Twilio request completed in %v (status: %d)", time.Since(startTime), resp.StatusCode())

	payload := gjson.ParseBytes(resp.Body())

	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		message := payload.Get("message").String()
		if message == "" {
			message = fmt.Sprintf("unexpected status code %d", resp.StatusCode())
		}
		return nil, &ProviderError{
			Provider:   "Twilio",
			StatusCode: resp.StatusCode(),
			Code:       payload.Get("code").String(),
			Message:    message,
		}
	}

	sid := payload.Get("sid").String()
	if sid == "" {
		return nil, fmt.Errorf("twilio response missing message sid: %s", resp.String())
	}

	status := payload.Get("status").String()
	if status == "" {
		status = "sent"
	}

	return &domain.SendReceipt{
		Provider:          ProviderTwilio,
		ProviderMessageID: sid,
		Details: map[string]string{
			"status":       status,
			"price":        payload.Get("price").String(),
			"price_unit":   payload.Get("price_unit").String(),
			"date_created": payload.Get("date_created").String(),
		},
	}, nil
}
