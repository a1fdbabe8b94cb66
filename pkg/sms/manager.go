package sms

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/onurcolak/sms-scheduler/environments"
	"github.com/onurcolak/sms-scheduler/internal/domain"
	"github.com/onurcolak/sms-scheduler/pkg/logger"
)

// Manager routes messages to registered providers by name and throttles each provider.
type Manager struct {
	mu            sync.RWMutex
	providers     map[string]Provider
	limiters      map[string]*rate.Limiter
	defaultName   string
	ratePerMinute int
}

// NewManager creates an empty manager. ratePerMinute <= 0 disables throttling.
func NewManager(defaultName string, ratePerMinute int) *Manager {
	return &Manager{
		providers:     make(map[string]Provider),
		limiters:      make(map[string]*rate.Limiter),
		defaultName:   strings.ToLower(defaultName),
		ratePerMinute: ratePerMinute,
	}
}

// NewManagerFromConfig registers every provider that has credentials configured.
func NewManagerFromConfig(cfg environments.SMSConfig) *Manager {
	m := NewManager(cfg.DefaultProvider, cfg.RatePerMinute)

	if cfg.Twilio.AccountSID != "" && cfg.Twilio.AuthToken != "" && cfg.Twilio.FromNumber != "" {
		m.Register(NewTwilioProvider(cfg.Twilio, cfg.Timeout))
	}
	if cfg.TextBelt.APIKey != "" {
		m.Register(NewTextBeltProvider(cfg.TextBelt, cfg.Timeout))
	}
	if cfg.Webhook.URL != "" {
		m.Register(NewWebhookProvider(cfg.Webhook, cfg.Timeout))
	}

	if names := m.Names(); len(names) > 0 {
		logger.Infof("SMS providers configured: %s (default: %s)", strings.Join(names, ", "), m.DefaultName())
	} else {
		logger.Warnf("No SMS provider configured; scheduled messages will fail until one is set up")
	}

	return m
}

func (m *Manager) Register(p Provider) {
	name := strings.ToLower(p.Name())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.providers[name] = p
	if m.ratePerMinute > 0 {
		m.limiters[name] = rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.ratePerMinute)), m.ratePerMinute)
	}
}

// Names returns the registered provider names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultName returns the configured default, or the first registered provider
// when the default is unset or not registered.
func (m *Manager) DefaultName() string {
	m.mu.RLock()
	_, ok := m.providers[m.defaultName]
	m.mu.RUnlock()

	if ok {
		return m.defaultName
	}
	if names := m.Names(); len(names) > 0 {
		return names[0]
	}
	return ""
}

// Get resolves a provider by name; an empty name selects the default.
func (m *Manager) Get(name string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = m.DefaultName()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.providers[name]
	if !ok {
		if name == "" {
			return nil, domain.ErrNoProvider
		}
		return nil, fmt.Errorf("%w: %q", domain.ErrNoProvider, name)
	}
	return p, nil
}

// Send waits for the provider's rate limit and delivers the message.
func (m *Manager) Send(ctx context.Context, providerName, to, body string) (*domain.SendReceipt, error) {
	p, err := m.Get(providerName)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	limiter := m.limiters[strings.ToLower(p.Name())]
	m.mu.RUnlock()

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait for %s: %w", p.Name(), err)
		}
	}

	logger.Infof("Sending SMS to %s using %s", to, p.Name())

	return p.Send(ctx, to, body)
}

// Quota returns the remaining quota of a provider that reports one.
func (m *Manager) Quota(ctx context.Context, providerName string) (int64, error) {
	p, err := m.Get(providerName)
	if err != nil {
		return 0, err
	}

	qp, ok := p.(QuotaProvider)
	if !ok {
		return 0, fmt.Errorf("provider %s does not report a quota", p.Name())
	}
	return qp.Quota(ctx)
}
