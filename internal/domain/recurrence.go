package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type RecurrenceKind string

const (
	RecurrenceNone    RecurrenceKind = "none"
	RecurrenceDaily   RecurrenceKind = "daily"
	RecurrenceWeekly  RecurrenceKind = "weekly"
	RecurrenceMonthly RecurrenceKind = "monthly"
	RecurrenceCustom  RecurrenceKind = "custom"
)

// DefaultDaysInterval is used by custom recurrence when no usable interval is stored.
const DefaultDaysInterval = 1

// Recurrence is the policy a message reschedules itself with after a successful send.
// DaysInterval is only meaningful for RecurrenceCustom.
type Recurrence struct {
	Kind         RecurrenceKind `json:"kind"`
	DaysInterval int            `json:"daysInterval,omitempty"`
}

func NoRecurrence() Recurrence { return Recurrence{Kind: RecurrenceNone} }
func Daily() Recurrence { return Recurrence{Kind: RecurrenceDaily} }
func Weekly() Recurrence { return Recurrence{Kind: RecurrenceWeekly} }
func Monthly() Recurrence { return Recurrence{Kind: RecurrenceMonthly} }
func EveryNDays(days int) Recurrence { return Recurrence{Kind: RecurrenceCustom, DaysInterval: days} }

// ParseRecurrenceKind maps a persisted or user-supplied value to a kind.
// Empty input means no recurrence.
func ParseRecurrenceKind(s string) (RecurrenceKind, error) {
	switch k := RecurrenceKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return RecurrenceNone, nil
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceCustom:
		return k, nil
	default:
		return k, fmt.Errorf("%w: unknown kind %q", ErrInvalidRecurrence, s)
	}
}

// Normalized treats the zero value as RecurrenceNone.
func (r Recurrence) Normalized() Recurrence {
	if r.Kind == "" {
		r.Kind = RecurrenceNone
	}
	if r.Kind != RecurrenceCustom {
		r.DaysInterval = 0
	}
	return r
}

func (r Recurrence) IsRecurring() bool {
	return r.Kind != "" && r.Kind != RecurrenceNone
}

// Validate rejects unknown kinds and custom recurrence without a positive interval.
func (r Recurrence) Validate() error {
	if _, err := ParseRecurrenceKind(string(r.Kind)); err != nil {
		return err
	}
	if r.Kind == RecurrenceCustom && r.DaysInterval < 1 {
		return fmt.Errorf("%w: custom recurrence requires daysInterval >= 1", ErrInvalidRecurrence)
	}
	return nil
}

func (r Recurrence) String() string {
	if r.Kind == RecurrenceCustom {
		return fmt.Sprintf("every %d days", r.DaysInterval)
	}
	return string(r.Normalized().Kind)
}

type intervalData struct {
	DaysInterval *int `json:"days_interval,omitempty"`
}

// EncodeIntervalData returns the persisted blob for the recurrence, or "" when none is needed.
func EncodeIntervalData(r Recurrence) string {
	if r.Kind != RecurrenceCustom || r.DaysInterval < 1 {
		return ""
	}
	days := r.DaysInterval
	b, _ := json.Marshal(intervalData{DaysInterval: &days})
	return string(b)
}

// ParseIntervalData decodes a persisted {"days_interval": N} blob.
// It returns 0 with a nil error when the blob is empty or lacks the field.
func ParseIntervalData(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	var data intervalData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return 0, fmt.Errorf("failed to decode interval data: %w", err)
	}
	if data.DaysInterval == nil {
		return 0, nil
	}

	return *data.DaysInterval, nil
}

// NextOccurrence computes when a recurring message is due next, starting from its
// current scheduled time. Only the date advances; the time of day is kept in t's location.
// ok is false for non-recurring policies.
func NextOccurrence(t time.Time, r Recurrence) (next time.Time, ok bool) {
	switch r.Kind {
	case RecurrenceDaily:
		return t.AddDate(0, 0, 1), true
	case RecurrenceWeekly:
		return t.AddDate(0, 0, 7), true
	case RecurrenceMonthly:
		return nextMonth(t), true
	case RecurrenceCustom:
		days := r.DaysInterval
		if days < 1 {
			days = DefaultDaysInterval
		}
		return t.AddDate(0, 0, days), true
	default:
		return time.Time{}, false
	}
}

// nextMonth keeps the day of month. A day missing from the target month is clamped
// to 28/29 for February and to 30 for every other month.
func nextMonth(t time.Time) time.Time {
	year, month, day := t.Date()

	month++
	if month > time.December {
		month = time.January
		year++
	}

	if day > daysInMonth(year, month) {
		if month == time.February {
			day = 28
			if IsLeapYear(year) {
				day = 29
			}
		} else {
			day = 30
		}
	}

	hour, minute, sec := t.Clock()
	return time.Date(year, month, day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
