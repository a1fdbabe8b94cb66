package domain

type EventType string

const (
	EventMessageScheduled   EventType = "message_scheduled"
	EventMessageSent        EventType = "message_sent"
	EventMessageFailed      EventType = "message_failed"
	EventMessageRescheduled EventType = "message_rescheduled"
	EventMessageCancelled   EventType = "message_cancelled"
	EventMessageUpdated     EventType = "message_updated"
)

// AllEventTypes lists every event the scheduler emits.
var AllEventTypes = []EventType{
	EventMessageScheduled,
	EventMessageSent,
	EventMessageFailed,
	EventMessageRescheduled,
	EventMessageCancelled,
	EventMessageUpdated,
}

// Event is the payload handed to scheduler listeners. Which fields are set
// depends on Type; times are formatted with TimeLayout.
type Event struct {
	Type          EventType     `json:"type"`
	ID            int64         `json:"id"`
	Recipient     string        `json:"recipient,omitempty"`
	ScheduledTime string        `json:"scheduledTime,omitempty"`
	Status        MessageStatus `json:"status,omitempty"`
	Error         string        `json:"error,omitempty"`
	NextSchedule  string        `json:"nextSchedule,omitempty"`
}
