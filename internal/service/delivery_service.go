package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/onurcolak/sms-scheduler/environments"
	"github.com/onurcolak/sms-scheduler/internal/domain"
	"github.com/onurcolak/sms-scheduler/pkg/logger"
)

// Small internal interfaces so we can test without touching real gateways, Redis or the database.
type smsGateway interface {
	Send(ctx context.Context, providerName, to, body string) (*domain.SendReceipt, error)
	DefaultName() string
}

type sentCache interface {
	CacheSentMessage(ctx context.Context, entry domain.SentMessageCache) error
	GetCachedMessage(ctx context.Context, provider, providerMessageID string) (*domain.SentMessageCache, error)
	GetAllCachedMessages(ctx context.Context) ([]domain.SentMessageCache, error)
}

type historyStore interface {
	Record(ctx context.Context, entry domain.HistoryEntry) (int64, error)
	List(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
}

// DeliveryService sends scheduled messages through the configured SMS gateways.
type DeliveryService struct {
	gateway          smsGateway
	cache            sentCache
	history          historyStore
	maxContentLength int
	now              func() time.Time
}

// NewDeliveryService creates the service; cache and history may be nil.
func NewDeliveryService(
	gateway smsGateway,
	cache sentCache,
	history historyStore,
	cfg environments.SMSConfig,
) *DeliveryService {
	return &DeliveryService{
		gateway:          gateway,
		cache:            cache,
		history:          history,
		maxContentLength: cfg.MaxContentLength,
		now:              time.Now,
	}
}

// Send delivers one message and records the attempt in the history, whatever the outcome.
func (s *DeliveryService) Send(ctx context.Context, msg domain.OutboundSMS) (*domain.SendReceipt, error) {
	body := s.truncate(msg.ScheduledID, msg.Body)

	receipt, err := s.gateway.Send(ctx, msg.Provider, msg.Recipient, body)
	if err == nil && receipt == nil {
		err = fmt.Errorf("provider returned no receipt for message %d", msg.ScheduledID)
	}
	if err != nil {
		logger.Errorf("Failed to send scheduled message %d: %v", msg.ScheduledID, err)
		s.recordHistory(ctx, msg, body, nil, err)
		return nil, err
	}

	sentAt := s.now()
	s.recordHistory(ctx, msg, body, receipt, nil)

	if s.cache != nil {
		entry := domain.SentMessageCache{
			ScheduledID:       msg.ScheduledID,
			Provider:          receipt.Provider,
			ProviderMessageID: receipt.ProviderMessageID,
			SentAt:            sentAt,
		}
		if err := s.cache.CacheSentMessage(ctx, entry); err != nil {
			logger.Warnf("Failed to cache message %d to Redis: %v", msg.ScheduledID, err)
		}
	}

	logger.Infof("Successfully sent message %d via %s (providerMessageId: %s)",
		msg.ScheduledID, receipt.Provider, receipt.ProviderMessageID)

	return receipt, nil
}

// recordHistory never fails the send; storage errors are logged.
func (s *DeliveryService) recordHistory(
	ctx context.Context,
	msg domain.OutboundSMS,
	body string,
	receipt *domain.SendReceipt,
	sendErr error,
) {
	if s.history == nil {
		return
	}

	entry := domain.HistoryEntry{
		ScheduledID: msg.ScheduledID,
		Recipient:   msg.Recipient,
		Body:        body,
		Provider:    msg.Provider,
		Status:      domain.StatusSent,
		SentAt:      s.now(),
	}
	if entry.Provider == "" {
		entry.Provider = s.gateway.DefaultName()
	}
	if receipt != nil {
		entry.Provider = receipt.Provider
		entry.ProviderMessageID = receipt.ProviderMessageID
	}
	if sendErr != nil {
		entry.Status = domain.StatusFailed
		entry.Error = sendErr.Error()
	}

	if _, err := s.history.Record(ctx, entry); err != nil {
		logger.Warnf("Failed to record history for message %d: %v", msg.ScheduledID, err)
	}
}

// truncate enforces the max content length in characters, ending cut bodies with "...".
func (s *DeliveryService) truncate(id int64, body string) string {
	limit := s.maxContentLength
	if limit <= 0 || utf8.RuneCountInString(body) <= limit {
		return body
	}

	logger.Warnf("Message %d exceeds max content length (%d > %d)", id, utf8.RuneCountInString(body), limit)

	runes := []rune(body)
	ellipsis := "..."
	if limit > len(ellipsis) {
		return string(runes[:limit-len(ellipsis)]) + ellipsis
	}
	return string(runes[:limit])
}

func (s *DeliveryService) GetCachedMessages(ctx context.Context) ([]domain.SentMessageCache, error) {
	if s.cache == nil {
		return nil, fmt.Errorf("redis client not configured")
	}
	return s.cache.GetAllCachedMessages(ctx)
}

// GetCachedMessage looks up one delivery; it returns domain.ErrMessageNotFound when the
// entry expired or never existed.
func (s *DeliveryService) GetCachedMessage(ctx context.Context, provider, providerMessageID string) (*domain.SentMessageCache, error) {
	if s.cache == nil {
		return nil, fmt.Errorf("redis client not configured")
	}

	entry, err := s.cache.GetCachedMessage(ctx, provider, providerMessageID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: no cached delivery %s/%s", domain.ErrMessageNotFound, provider, providerMessageID)
	}
	return entry, nil
}

// GetHistory returns the most recent delivery attempts, newest first.
func (s *DeliveryService) GetHistory(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if s.history == nil {
		return nil, fmt.Errorf("message history not configured")
	}
	return s.history.List(ctx, limit)
}
