package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/onurcolak/sms-scheduler/environments"
	"github.com/onurcolak/sms-scheduler/internal/domain"
)

//
// Test fakes – only for this file.
//

type fakeGateway struct {
	shouldFail        bool
	responseMessageID string

	lastProvider string
	lastTo       string
	lastBody     string
}

func (g *fakeGateway) Send(ctx context.Context, providerName, to, body string) (*domain.SendReceipt, error) {
	g.lastProvider = providerName
	g.lastTo = to
	g.lastBody = body

	if g.shouldFail {
		return nil, fmt.Errorf("simulated gateway error")
	}

	messageID := g.responseMessageID
	if messageID == "" {
		messageID = "test-message-id"
	}

	return &domain.SendReceipt{Provider: "fake", ProviderMessageID: messageID}, nil
}

func (g *fakeGateway) DefaultName() string { return "fake-default" }

type fakeCache struct {
	entries []domain.SentMessageCache
	err     error
}

func (c *fakeCache) CacheSentMessage(ctx context.Context, entry domain.SentMessageCache) error {
	if c.err != nil {
		return c.err
	}
	c.entries = append(c.entries, entry)
	return nil
}

func (c *fakeCache) GetCachedMessage(ctx context.Context, provider, providerMessageID string) (*domain.SentMessageCache, error) {
	for i := range c.entries {
		if c.entries[i].Provider == provider && c.entries[i].ProviderMessageID == providerMessageID {
			return &c.entries[i], nil
		}
	}
	return nil, c.err
}

func (c *fakeCache) GetAllCachedMessages(ctx context.Context) ([]domain.SentMessageCache, error) {
	return c.entries, nil
}

type fakeHistory struct {
	entries []domain.HistoryEntry
	err     error
}

func (h *fakeHistory) Record(ctx context.Context, entry domain.HistoryEntry) (int64, error) {
	if h.err != nil {
		return 0, h.err
	}
	h.entries = append(h.entries, entry)
	return int64(len(h.entries)), nil
}

func (h *fakeHistory) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	return h.entries, h.err
}

func newTestDeliveryService(gw *fakeGateway, cache sentCache, maxLen int) *DeliveryService {
	svc := NewDeliveryService(gw, cache, nil, environments.SMSConfig{MaxContentLength: maxLen})
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestDeliveryService_SendSuccessCachesDelivery(t *testing.T) {
	gw := &fakeGateway{responseMessageID: "SM1"}
	cache := &fakeCache{}
	svc := newTestDeliveryService(gw, cache, 160)

	receipt, err := svc.Send(context.Background(), domain.OutboundSMS{
		ScheduledID: 7,
		Recipient:   "+905551234567",
		Body:        "hello",
		Provider:    "twilio",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receipt.ProviderMessageID != "SM1" {
		t.Errorf("expected provider message id SM1, got %q", receipt.ProviderMessageID)
	}
	if gw.lastProvider != "twilio" || gw.lastTo != "+905551234567" || gw.lastBody != "hello" {
		t.Errorf("gateway called with unexpected args: %q %q %q", gw.lastProvider, gw.lastTo, gw.lastBody)
	}
	if len(cache.entries) != 1 {
		t.Fatalf("expected 1 cache entry, got %d", len(cache.entries))
	}
	if cache.entries[0].ScheduledID != 7 || cache.entries[0].ProviderMessageID != "SM1" {
		t.Errorf("unexpected cache entry: %+v", cache.entries[0])
	}
}

func TestDeliveryService_SendFailureSkipsCache(t *testing.T) {
	gw := &fakeGateway{shouldFail: true}
	cache := &fakeCache{}
	svc := newTestDeliveryService(gw, cache, 160)

	_, err := svc.Send(context.Background(), domain.OutboundSMS{ScheduledID: 1, Recipient: "+1", Body: "x"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(cache.entries) != 0 {
		t.Errorf("expected no cache entries, got %d", len(cache.entries))
	}
}

func TestDeliveryService_CacheErrorDoesNotFailSend(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestDeliveryService(gw, &fakeCache{err: fmt.Errorf("redis down")}, 160)

	if _, err := svc.Send(context.Background(), domain.OutboundSMS{ScheduledID: 1, Recipient: "+1", Body: "x"}); err != nil {
		t.Fatalf("expected cache errors to be ignored, got %v", err)
	}
}

func TestDeliveryService_TruncatesLongContent(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestDeliveryService(gw, nil, 10)

	_, err := svc.Send(context.Background(), domain.OutboundSMS{ScheduledID: 1, Recipient: "+1", Body: strings.Repeat("ş", 20)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := strings.Repeat("ş", 7) + "..."
	if gw.lastBody != want {
		t.Errorf("expected %q, got %q", want, gw.lastBody)
	}
}

func TestDeliveryService_GetCachedMessagesWithoutCache(t *testing.T) {
	svc := newTestDeliveryService(&fakeGateway{}, nil, 160)

	if _, err := svc.GetCachedMessages(context.Background()); err == nil {
		t.Fatal("expected error when cache is not configured")
	}
}

func TestDeliveryService_RecordsSuccessfulAttempt(t *testing.T) {
	history := &fakeHistory{}
	svc := newTestDeliveryService(&fakeGateway{responseMessageID: "SM9"}, nil, 160)
	svc.history = history

	if _, err := svc.Send(context.Background(), domain.OutboundSMS{ScheduledID: 4, Recipient: "+1", Body: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(history.entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history.entries))
	}
	got := history.entries[0]
	if got.Status != domain.StatusSent || got.Provider != "fake" || got.ProviderMessageID != "SM9" || got.ScheduledID != 4 {
		t.Errorf("unexpected history entry: %+v", got)
	}
	if got.Error != "" {
		t.Errorf("expected no error text, got %q", got.Error)
	}
}

func TestDeliveryService_RecordsFailedAttempt(t *testing.T) {
	history := &fakeHistory{}
	svc := newTestDeliveryService(&fakeGateway{shouldFail: true}, nil, 160)
	svc.history = history

	_, err := svc.Send(context.Background(), domain.OutboundSMS{ScheduledID: 5, Recipient: "+1", Body: "hi"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if len(history.entries) != 1 {
		t.Fatalf("expected failed attempt to be recorded, got %d entries", len(history.entries))
	}
	got := history.entries[0]
	if got.Status != domain.StatusFailed {
		t.Errorf("expected status failed, got %s", got.Status)
	}
	if got.Error != "simulated gateway error" {
		t.Errorf("expected gateway error text, got %q", got.Error)
	}
	if got.Provider != "fake-default" {
		t.Errorf("expected default provider name, got %q", got.Provider)
	}
	if !got.SentAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected attempt time %v", got.SentAt)
	}
}

func TestDeliveryService_HistoryErrorDoesNotFailSend(t *testing.T) {
	svc := newTestDeliveryService(&fakeGateway{}, nil, 160)
	svc.history = &fakeHistory{err: fmt.Errorf("database is locked")}

	if _, err := svc.Send(context.Background(), domain.OutboundSMS{ScheduledID: 1, Recipient: "+1", Body: "x"}); err != nil {
		t.Fatalf("expected history errors to be ignored, got %v", err)
	}
}

func TestDeliveryService_GetCachedMessageMissingIsNotFound(t *testing.T) {
	cache := &fakeCache{entries: []domain.SentMessageCache{{ScheduledID: 3, Provider: "twilio", ProviderMessageID: "SM3"}}}
	svc := newTestDeliveryService(&fakeGateway{}, cache, 160)

	entry, err := svc.GetCachedMessage(context.Background(), "twilio", "SM3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ScheduledID != 3 {
		t.Errorf("unexpected entry: %+v", entry)
	}

	_, err = svc.GetCachedMessage(context.Background(), "twilio", "SM404")
	if !errors.Is(err, domain.ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
}
