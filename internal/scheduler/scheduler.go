package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/onurcolak/sms-scheduler/environments"
	"github.com/onurcolak/sms-scheduler/internal/domain"
	"github.com/onurcolak/sms-scheduler/internal/events"
	"github.com/onurcolak/sms-scheduler/pkg/alert"
	"github.com/onurcolak/sms-scheduler/pkg/logger"
)

// Store is the persistence the scheduler works against.
type Store interface {
	GetDue(ctx context.Context, now time.Time) ([]domain.ScheduledMessage, error)
	Create(ctx context.Context, msg domain.NewScheduledMessage) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.ScheduledMessage, error)
	List(ctx context.Context, includeCompleted bool) ([]domain.ScheduledMessage, error)
	UpdateStatus(ctx context.Context, id int64, status domain.MessageStatus, completedAt *time.Time) error
	Update(ctx context.Context, id int64, patch domain.MessagePatch) error
	Delete(ctx context.Context, id int64) (bool, error)
	TouchLastRun(ctx context.Context, id int64, at time.Time) error
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg domain.OutboundSMS) (*domain.SendReceipt, error)
}

type alerter interface {
	Send(ctx context.Context, a alert.Alert) error
}

type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithAlerter sends an alert after threshold consecutive cycles in which every message failed.
func WithAlerter(a alerter, threshold int) Option {
	return func(s *Scheduler) {
		s.alerter = a
		s.alertThreshold = threshold
	}
}

// Scheduler owns the lifecycle of scheduled messages: it persists them, polls for due
// ones in the background and sends them through the Sender.
//
// opMu serializes every store-touching operation, including the whole due-message batch.
// mu only guards lifecycle state and statistics. Events produced while opMu is held are
// emitted after it is released, so listeners may call back into the scheduler.
type Scheduler struct {
	store  Store
	sender Sender
	bus    *events.Bus

	interval    time.Duration
	stopTimeout time.Duration
	loc         *time.Location
	now         func() time.Time

	alerter        alerter
	alertThreshold int

	opMu sync.Mutex

	mu        sync.RWMutex
	running   bool
	cron      *cron.Cron
	stopWatch chan struct{}

	// Statistics
	lastRunAt      time.Time
	runsCount      int64
	messagesSent   int64
	messagesFailed int64

	// Alert tracking
	consecutiveAllFailCount int
	lastAlertSentAt         time.Time
}

func New(store Store, sender Sender, bus *events.Bus, cfg environments.SchedulerConfig, opts ...Option) *Scheduler {
	if bus == nil {
		bus = events.NewBus()
	}

	s := &Scheduler{
		store:       store,
		sender:      sender,
		bus:         bus,
		interval:    cfg.PollInterval,
		stopTimeout: cfg.StopTimeout,
		loc:         cfg.Location(),
		now:         time.Now,
	}

	if s.interval <= 0 {
		s.interval = time.Minute
	}
	if s.stopTimeout <= 0 {
		s.stopTimeout = time.Second
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Schedule stores a new pending message and returns its id. Past times are accepted
// and picked up by the next poll.
func (s *Scheduler) Schedule(ctx context.Context, req domain.ScheduleRequest) (int64, error) {
	if req.ScheduledTime.IsZero() {
		return 0, fmt.Errorf("%w: scheduled time is required", domain.ErrInvalidMessage)
	}

	recurrence := req.Recurrence.Normalized()
	if err := recurrence.Validate(); err != nil {
		return 0, err
	}

	s.opMu.Lock()
	id, err := s.store.Create(ctx, domain.NewScheduledMessage{
		Recipient:     req.Recipient,
		Body:          req.Body,
		ScheduledTime: req.ScheduledTime.Truncate(time.Second),
		Recurrence:    recurrence,
		Provider:      req.Provider,
		Status:        domain.StatusPending,
	})
	s.opMu.Unlock()

	if err != nil {
		logger.Errorf("Failed to schedule message for %s: %v", req.Recipient, err)
		return 0, fmt.Errorf("failed to schedule message: %w", err)
	}

	logger.Infof("Scheduled message %d for %s at %s (recurrence: %s)",
		id, req.Recipient, s.formatTime(req.ScheduledTime), recurrence)

	s.bus.Emit(ctx, domain.Event{
		Type:          domain.EventMessageScheduled,
		ID:            id,
		Recipient:     req.Recipient,
		ScheduledTime: s.formatTime(req.ScheduledTime),
	})

	return id, nil
}

// Cancel deletes a message in any status. It returns domain.ErrMessageNotFound
// when nothing was deleted.
func (s *Scheduler) Cancel(ctx context.Context, id int64) error {
	s.opMu.Lock()
	deleted, err := s.store.Delete(ctx, id)
	s.opMu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to cancel message %d: %w", id, err)
	}
	if !deleted {
		return domain.ErrMessageNotFound
	}

	logger.Infof("Cancelled scheduled message %d", id)

	s.bus.Emit(ctx, domain.Event{Type: domain.EventMessageCancelled, ID: id})

	return nil
}

// Update applies the non-nil fields of upd to an existing message. It returns
// domain.ErrMessageNotFound, without touching the store, when the message does not exist.
func (s *Scheduler) Update(ctx context.Context, id int64, upd domain.MessageUpdate) error {
	if upd.Recurrence != nil {
		normalized := upd.Recurrence.Normalized()
		if err := normalized.Validate(); err != nil {
			return err
		}
		upd.Recurrence = &normalized
	}
	if upd.ScheduledTime != nil {
		truncated := upd.ScheduledTime.Truncate(time.Second)
		upd.ScheduledTime = &truncated
	}

	s.opMu.Lock()
	err := s.applyUpdate(ctx, id, upd)
	s.opMu.Unlock()

	if err != nil {
		return err
	}

	logger.Infof("Updated scheduled message %d", id)

	s.bus.Emit(ctx, domain.Event{Type: domain.EventMessageUpdated, ID: id})

	return nil
}

// applyUpdate must be called with opMu held.
func (s *Scheduler) applyUpdate(ctx context.Context, id int64, upd domain.MessageUpdate) error {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			return domain.ErrMessageNotFound
		}
		return fmt.Errorf("failed to load message %d: %w", id, err)
	}

	if upd.IsEmpty() {
		return nil
	}

	if err := s.store.Update(ctx, id, domain.MessagePatch{MessageUpdate: upd}); err != nil {
		return fmt.Errorf("failed to update message %d: %w", id, err)
	}

	return nil
}

// ListScheduled returns every stored message, including completed ones, optionally
// filtered by status.
func (s *Scheduler) ListScheduled(ctx context.Context, status *domain.MessageStatus) ([]domain.ScheduledMessage, error) {
	s.opMu.Lock()
	messages, err := s.store.List(ctx, true)
	s.opMu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled messages: %w", err)
	}

	if status == nil {
		return messages, nil
	}

	filtered := make([]domain.ScheduledMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Status == *status {
			filtered = append(filtered, msg)
		}
	}

	return filtered, nil
}

// RegisterCallback adds a listener for eventType. Listeners run in registration order.
func (s *Scheduler) RegisterCallback(eventType domain.EventType, fn events.Listener) {
	s.bus.Register(eventType, fn)
}

// Start registers the background poll job and returns immediately. The first poll
// happens one interval after Start. Cancelling ctx stops the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()

	if s.running {
		s.mu.Unlock()
		logger.Warnf("Scheduler is already running")
		return nil
	}

	cronLogger := cron.PrintfLogger(logger.Std())
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	// Polls outlive the caller's cancellation so an in-flight batch is never cut short.
	jobCtx := context.WithoutCancel(ctx)
	c.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		s.CheckDueMessages(jobCtx)
	}))
	c.Start()

	stopWatch := make(chan struct{})
	s.running = true
	s.cron = c
	s.stopWatch = stopWatch
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			logger.Warnf("Scheduler context cancelled")
			_ = s.Stop()
		case <-stopWatch:
		}
	}()

	logger.Infof("Starting scheduler with interval: %v", s.interval)

	return nil
}

// Stop halts polling. It waits at most the configured stop timeout for an in-flight
// batch and then returns regardless; the batch itself is not interrupted.
func (s *Scheduler) Stop() error {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()
		logger.Warnf("Scheduler is not running")
		return nil
	}

	s.running = false
	c := s.cron
	s.cron = nil
	close(s.stopWatch)
	s.mu.Unlock()

	done := c.Stop()

	timer := time.NewTimer(s.stopTimeout)
	defer timer.Stop()

	select {
	case <-done.Done():
		logger.Infof("Scheduler stopped")
	case <-timer.C:
		logger.Warnf("Scheduler stopped; in-flight run still finishing after %v", s.stopTimeout)
	}

	return nil
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// RunNow performs one poll cycle on the caller's goroutine.
func (s *Scheduler) RunNow(ctx context.Context) []domain.SendResult {
	logger.Infof("Manual scheduler run requested")
	return s.CheckDueMessages(ctx)
}

// CheckDueMessages sends every due message once. Per-message failures are recorded
// on the message and reported through events; they are never returned.
func (s *Scheduler) CheckDueMessages(ctx context.Context) []domain.SendResult {
	startedAt := s.now()

	s.mu.Lock()
	s.lastRunAt = startedAt
	s.runsCount++
	runNumber := s.runsCount
	s.mu.Unlock()

	logger.Debugf("[Run #%d] Checking due messages at %s", runNumber, s.formatTime(startedAt))

	results, pending := s.processDue(ctx, runNumber, startedAt)

	for _, e := range pending {
		s.bus.Emit(ctx, e)
	}

	s.recordRun(ctx, runNumber, results)

	return results
}

func (s *Scheduler) processDue(ctx context.Context, runNumber int64, now time.Time) (results []domain.SendResult, pending []domain.Event) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[Run #%d] Panic while checking due messages: %v", runNumber, r)
		}
	}()

	due, err := s.store.GetDue(ctx, now)
	if err != nil {
		logger.Errorf("[Run #%d] Error loading due messages: %v", runNumber, err)
		return nil, nil
	}

	if len(due) == 0 {
		logger.Debugf("[Run #%d] No messages to process", runNumber)
		return nil, nil
	}

	logger.Infof("[Run #%d] Processing %d due messages", runNumber, len(due))

	results = make([]domain.SendResult, 0, len(due))
	for _, msg := range due {
		result, evs := s.processMessage(ctx, msg)
		results = append(results, result)
		pending = append(pending, evs...)
	}

	return results, pending
}

// processMessage must be called with opMu held. It never panics and never returns an
// error; the outcome is reported in the result and the returned events.
func (s *Scheduler) processMessage(ctx context.Context, msg domain.ScheduledMessage) (result domain.SendResult, evs []domain.Event) {
	now := s.now()
	result = domain.SendResult{ScheduledID: msg.ID, SentAt: now}

	if msg.ID <= 0 {
		logger.Errorf("Skipping scheduled message without a valid id: %+v", msg)
		result.Error = fmt.Errorf("%w: missing id", domain.ErrInvalidMessage)
		return result, nil
	}
	if msg.Status != domain.StatusPending {
		logger.Warnf("Skipping message %d: status is %s, not pending", msg.ID, msg.Status)
		result.Error = fmt.Errorf("message %d is %s, not pending", msg.ID, msg.Status)
		return result, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic while processing message %d: %v", msg.ID, r)
			logger.Errorf("%v", err)
			s.markFailedQuietly(ctx, msg.ID)

			result.Success = false
			result.ProviderMessageID = ""
			result.Error = err
			evs = []domain.Event{s.failedEvent(msg, err)}
		}
	}()

	if err := s.store.TouchLastRun(ctx, msg.ID, now); err != nil {
		logger.Warnf("Failed to record last run of message %d: %v", msg.ID, err)
	}

	if err := validateDue(msg); err != nil {
		logger.Warnf("Invalid message data for %d: %v", msg.ID, err)
		s.markFailedQuietly(ctx, msg.ID)
		result.Error = err
		return result, nil
	}

	receipt, sendErr := s.sender.Send(ctx, domain.OutboundSMS{
		ScheduledID: msg.ID,
		Recipient:   msg.Recipient,
		Body:        msg.Body,
		Provider:    msg.Provider,
	})
	if sendErr != nil {
		completedAt := now
		if err := s.store.UpdateStatus(ctx, msg.ID, domain.StatusFailed, &completedAt); err != nil {
			logger.Errorf("Failed to mark message %d as failed: %v", msg.ID, err)
		}

		result.Error = sendErr
		return result, []domain.Event{s.failedEvent(msg, sendErr)}
	}

	if receipt != nil {
		result.ProviderMessageID = receipt.ProviderMessageID
	}

	sent := domain.Event{
		Type:      domain.EventMessageSent,
		ID:        msg.ID,
		Recipient: msg.Recipient,
		Status:    domain.StatusSent,
	}

	if next, ok := domain.NextOccurrence(msg.ScheduledTime.In(s.loc), msg.Recurrence); ok {
		pendingStatus := domain.StatusPending
		err := s.store.Update(ctx, msg.ID, domain.MessagePatch{
			MessageUpdate: domain.MessageUpdate{ScheduledTime: &next},
			Status:        &pendingStatus,
		})
		if err != nil {
			return s.processingFailed(ctx, msg, result, fmt.Errorf("failed to reschedule message %d: %w", msg.ID, err))
		}

		logger.Infof("Message %d sent; next occurrence %s", msg.ID, s.formatTime(next))

		// The next occurrence is announced before the delivery itself.
		result.Success = true
		return result, []domain.Event{{
			Type:         domain.EventMessageRescheduled,
			ID:           msg.ID,
			NextSchedule: s.formatTime(next),
		}, sent}
	}

	completedAt := now
	if err := s.store.UpdateStatus(ctx, msg.ID, domain.StatusSent, &completedAt); err != nil {
		return s.processingFailed(ctx, msg, result, fmt.Errorf("failed to mark message %d as sent: %w", msg.ID, err))
	}

	result.Success = true
	return result, []domain.Event{sent}
}

func (s *Scheduler) processingFailed(
	ctx context.Context,
	msg domain.ScheduledMessage,
	result domain.SendResult,
	err error,
) (domain.SendResult, []domain.Event) {
	logger.Errorf("Error processing scheduled message: %v", err)
	s.markFailedQuietly(ctx, msg.ID)

	result.Success = false
	result.Error = err
	return result, []domain.Event{s.failedEvent(msg, err)}
}

func (s *Scheduler) failedEvent(msg domain.ScheduledMessage, err error) domain.Event {
	return domain.Event{
		Type:      domain.EventMessageFailed,
		ID:        msg.ID,
		Recipient: msg.Recipient,
		Status:    domain.StatusFailed,
		Error:     err.Error(),
	}
}

// markFailedQuietly swallows every secondary failure, panics included.
func (s *Scheduler) markFailedQuietly(ctx context.Context, id int64) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Panic while marking message %d as failed: %v", id, r)
		}
	}()

	completedAt := s.now()
	if err := s.store.UpdateStatus(ctx, id, domain.StatusFailed, &completedAt); err != nil {
		logger.Errorf("Failed to mark message %d as failed: %v", id, err)
	}
}

func validateDue(msg domain.ScheduledMessage) error {
	var missing []string
	if strings.TrimSpace(msg.Recipient) == "" {
		missing = append(missing, "recipient")
	}
	if msg.Body == "" {
		missing = append(missing, "body")
	}
	if msg.ScheduledTime.IsZero() {
		missing = append(missing, "scheduledTime")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", domain.ErrInvalidMessage, strings.Join(missing, ", "))
	}

	if _, err := domain.ParseRecurrenceKind(string(msg.Recurrence.Kind)); err != nil {
		return err
	}

	return nil
}

func (s *Scheduler) recordRun(ctx context.Context, runNumber int64, results []domain.SendResult) {
	if len(results) == 0 {
		return
	}

	successCount := 0
	for _, r := range results {
		if r.Success {
			successCount++
		}
	}
	failedCount := len(results) - successCount

	s.mu.Lock()
	s.messagesSent += int64(successCount)
	s.messagesFailed += int64(failedCount)

	sendAlert := false
	if successCount == 0 {
		s.consecutiveAllFailCount++
		logger.Warnf("[Run #%d] All %d messages failed (consecutive count: %d/%d)",
			runNumber, len(results), s.consecutiveAllFailCount, s.alertThreshold)

		sendAlert = s.alerter != nil && s.alertThreshold > 0 && s.consecutiveAllFailCount >= s.alertThreshold
	} else {
		if s.consecutiveAllFailCount > 0 {
			logger.Debugf("[Run #%d] Resetting consecutive failure count (was: %d)",
				runNumber, s.consecutiveAllFailCount)
		}
		s.consecutiveAllFailCount = 0
	}
	consecutive := s.consecutiveAllFailCount
	s.mu.Unlock()

	if sendAlert {
		go s.sendAlert(context.WithoutCancel(ctx), runNumber, consecutive, len(results))
	}

	logger.Infof("[Run #%d] Processed %d messages, %d successful, %d failed",
		runNumber, len(results), successCount, failedCount)
}

func (s *Scheduler) sendAlert(ctx context.Context, runNumber int64, consecutiveFailures int, messagesInBatch int) {
	err := s.alerter.Send(ctx, alert.Alert{
		Alert:               "consecutive_all_fail",
		RunNumber:           runNumber,
		ConsecutiveFailures: consecutiveFailures,
		MessagesInBatch:     messagesInBatch,
		Timestamp:           s.now().Format(time.RFC3339),
		Message: fmt.Sprintf(
			"All %d messages failed for %d consecutive iterations",
			messagesInBatch,
			consecutiveFailures,
		),
	})
	if err != nil {
		logger.Errorf("Failed to send alert: %v", err)
		return
	}

	s.mu.Lock()
	s.lastAlertSentAt = s.now()
	s.mu.Unlock()

	logger.Infof("Alert sent successfully (consecutive failures: %d)", consecutiveFailures)
}

func (s *Scheduler) formatTime(t time.Time) string {
	return t.In(s.loc).Format(domain.TimeLayout)
}

func (s *Scheduler) GetStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		Running:                 s.running,
		LastRunAt:               s.lastRunAt,
		MessagesSent:            s.messagesSent,
		MessagesFailed:          s.messagesFailed,
		RunsCount:               s.runsCount,
		Interval:                s.interval,
		ConsecutiveAllFailCount: s.consecutiveAllFailCount,
		LastAlertSentAt:         s.lastAlertSentAt,
	}

	if s.running && s.cron != nil {
		if entries := s.cron.Entries(); len(entries) > 0 {
			status.NextRunAt = entries[0].Next
		}
	}

	return status
}

type Status struct {
	Running                 bool          `json:"running"`
	LastRunAt               time.Time     `json:"lastRunAt,omitempty"`
	NextRunAt               time.Time     `json:"nextRunAt,omitempty"`
	MessagesSent            int64         `json:"messagesSent"`
	MessagesFailed          int64         `json:"messagesFailed"`
	RunsCount               int64         `json:"runsCount"`
	Interval                time.Duration `json:"interval"`
	ConsecutiveAllFailCount int           `json:"consecutiveAllFailCount"`
	LastAlertSentAt         time.Time     `json:"lastAlertSentAt,omitempty"`
}
