package domain

import "time"

type MessageStatus string

const (
	StatusPending MessageStatus = "pending"
	StatusSent    MessageStatus = "sent"
	StatusFailed  MessageStatus = "failed"
)

func (s MessageStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSent, StatusFailed:
		return true
	}
	return false
}

// TimeLayout is the second-precision format scheduled times are persisted with.
const TimeLayout = "2006-01-02 15:04:05"

// ScheduledMessage is a deferred or recurring send request.
type ScheduledMessage struct {
	ID            int64         `json:"id"`
	Recipient     string        `json:"recipient"`
	Body          string        `json:"body"`
	ScheduledTime time.Time     `json:"scheduledTime"`
	Provider      string        `json:"provider,omitempty"`
	Recurrence    Recurrence    `json:"recurrence"`
	Status        MessageStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	CompletedAt   *time.Time    `json:"completedAt,omitempty"`
	LastRunAt     *time.Time    `json:"lastRunAt,omitempty"`

	// RawIntervalData holds the persisted interval blob when it could not be decoded.
	RawIntervalData string `json:"rawIntervalData,omitempty"`
}

// IsDue reports whether the message is pending and its time has passed.
func (m ScheduledMessage) IsDue(now time.Time) bool {
	return m.Status == StatusPending && !m.ScheduledTime.After(now)
}

// ScheduleRequest carries the caller-supplied fields of a new message.
type ScheduleRequest struct {
	Recipient     string
	Body          string
	ScheduledTime time.Time
	Recurrence    Recurrence
	Provider      string
}

// NewScheduledMessage is what the store persists on creation.
type NewScheduledMessage struct {
	Recipient     string
	Body          string
	ScheduledTime time.Time
	Recurrence    Recurrence
	Provider      string
	Status        MessageStatus
}

// MessageUpdate is a partial update issued by callers. Nil fields are left untouched.
type MessageUpdate struct {
	Recipient     *string
	Body          *string
	ScheduledTime *time.Time
	Recurrence    *Recurrence
	Provider      *string
}

func (u MessageUpdate) IsEmpty() bool {
	return u.Recipient == nil && u.Body == nil && u.ScheduledTime == nil &&
		u.Recurrence == nil && u.Provider == nil
}

// MessagePatch is the store-level partial update; only the scheduler sets Status.
type MessagePatch struct {
	MessageUpdate
	Status *MessageStatus
}

// OutboundSMS is a single delivery handed to a Sender.
type OutboundSMS struct {
	ScheduledID int64
	Recipient   string
	Body        string
	Provider    string
}

// SendReceipt is returned by a provider on successful delivery.
type SendReceipt struct {
	Provider          string            `json:"provider"`
	ProviderMessageID string            `json:"providerMessageId"`
	Details           map[string]string `json:"details,omitempty"`
}

type SentMessageCache struct {
	ScheduledID       int64     `json:"scheduledId"`
	Provider          string    `json:"provider"`
	ProviderMessageID string    `json:"providerMessageId"`
	SentAt            time.Time `json:"sentAt"`
}

// HistoryEntry is the permanent record of one delivery attempt, successful or not.
// ScheduledID is zero for immediate sends.
type HistoryEntry struct {
	ID                int64         `json:"id"`
	ScheduledID       int64         `json:"scheduledId,omitempty"`
	Recipient         string        `json:"recipient"`
	Body              string        `json:"body"`
	Provider          string        `json:"provider"`
	Status            MessageStatus `json:"status"`
	ProviderMessageID string        `json:"providerMessageId,omitempty"`
	Error             string        `json:"error,omitempty"`
	SentAt            time.Time     `json:"sentAt"`
}

type SendResult struct {
	ScheduledID       int64
	ProviderMessageID string
	Success           bool
	Error             error
	SentAt            time.Time
}

type MessageStats struct {
	Pending int64 `json:"pending" db:"pending"`
	Sent    int64 `json:"sent" db:"sent"`
	Failed  int64 `json:"failed" db:"failed"`
}

func (s MessageStats) Total() int64 {
	return s.Pending + s.Sent + s.Failed
}
