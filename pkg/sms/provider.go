// Package sms contains the SMS gateway clients messages are delivered through.
package sms

import (
	"context"
	"fmt"

	"github.com/onurcolak/sms-scheduler/internal/domain"
)

// Provider delivers a single SMS through one gateway.
type Provider interface {
	Name() string
	Send(ctx context.Context, to, body string) (*domain.SendReceipt, error)
}

// QuotaProvider is implemented by gateways that expose a remaining-message quota.
type QuotaProvider interface {
	Quota(ctx context.Context) (int64, error)
}

// ProviderError is a rejection reported by the gateway itself.
type ProviderError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s API error: %s (code %s)", e.Provider, e.Message, e.Code)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}
