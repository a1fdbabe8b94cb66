package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/sms-scheduler/internal/domain"
)

// DefaultHistoryLimit caps List when the caller passes no positive limit.
const DefaultHistoryLimit = 20

// HistoryRepository keeps the permanent record of every delivery attempt.
type HistoryRepository struct {
	db *sqlx.DB
}

func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

type historyRow struct {
	ID                int64          `db:"id"`
	ScheduledID       sql.NullInt64  `db:"scheduled_id"`
	Recipient         string         `db:"recipient"`
	Body              string         `db:"body"`
	Provider          string         `db:"provider"`
	Status            string         `db:"status"`
	ProviderMessageID string         `db:"provider_message_id"`
	Error             sql.NullString `db:"error"`
	SentAt            string         `db:"sent_at"`
}

func (row historyRow) toDomain() domain.HistoryEntry {
	entry := domain.HistoryEntry{
		ID:                row.ID,
		ScheduledID:       row.ScheduledID.Int64,
		Recipient:         row.Recipient,
		Body:              row.Body,
		Provider:          row.Provider,
		Status:            domain.MessageStatus(row.Status),
		ProviderMessageID: row.ProviderMessageID,
		Error:             row.Error.String,
	}
	if sentAt, err := parseTime(row.SentAt); err == nil {
		entry.SentAt = sentAt
	}
	return entry
}

func (r *HistoryRepository) Record(ctx context.Context, entry domain.HistoryEntry) (int64, error) {
	var scheduledID any
	if entry.ScheduledID > 0 {
		scheduledID = entry.ScheduledID
	}
	var errText any
	if entry.Error != "" {
		errText = entry.Error
	}

	args := []any{
		scheduledID,
		entry.Recipient,
		entry.Body,
		entry.Provider,
		string(entry.Status),
		entry.ProviderMessageID,
		errText,
		formatTime(entry.SentAt),
	}

	query := `
		INSERT INTO message_history (scheduled_id, recipient, body, provider, status, provider_message_id, error, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if r.db.DriverName() == "postgres" {
		var id int64
		if err := r.db.QueryRowxContext(ctx, r.db.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to record message history: %w", err)
		}
		return id, nil
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to record message history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return id, nil
}

// List returns the most recent attempts first.
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := r.db.Rebind(`
		SELECT id, scheduled_id, recipient, body, provider, status, provider_message_id, error, sent_at
		FROM message_history
		ORDER BY sent_at DESC, id DESC
		LIMIT ?
	`)

	var rows []historyRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list message history: %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}

	return entries, nil
}
