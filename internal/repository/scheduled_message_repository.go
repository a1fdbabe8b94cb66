package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/sms-scheduler/internal/domain"
	"github.com/onurcolak/sms-scheduler/pkg/logger"
)

const selectColumns = `id, recipient, body, scheduled_time, provider, recurrence, interval_data,
	status, created_at, completed_at, last_run_at`

// ScheduledMessageRepository persists scheduled messages through sqlx.
// Queries are written with '?' placeholders and rebound for the connected dialect.
type ScheduledMessageRepository struct {
	db *sqlx.DB
}

func NewScheduledMessageRepository(db *sqlx.DB) *ScheduledMessageRepository {
	return &ScheduledMessageRepository{db: db}
}

type scheduledMessageRow struct {
	ID            int64          `db:"id"`
	Recipient     string         `db:"recipient"`
	Body          string         `db:"body"`
	ScheduledTime string         `db:"scheduled_time"`
	Provider      string         `db:"provider"`
	Recurrence    string         `db:"recurrence"`
	IntervalData  sql.NullString `db:"interval_data"`
	Status        string         `db:"status"`
	CreatedAt     string         `db:"created_at"`
	CompletedAt   sql.NullString `db:"completed_at"`
	LastRunAt     sql.NullString `db:"last_run_at"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(domain.TimeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(domain.TimeLayout, strings.TrimSpace(s), time.UTC)
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullIntervalData(r domain.Recurrence) any {
	if raw := domain.EncodeIntervalData(r); raw != "" {
		return raw
	}
	return nil
}

// toDomain decodes a row once at the storage boundary. An unknown recurrence kind is kept
// as-is so the scheduler can reject it; undecodable interval data is kept in RawIntervalData.
// A malformed scheduled_time leaves ScheduledTime zero.
func (row scheduledMessageRow) toDomain() domain.ScheduledMessage {
	msg := domain.ScheduledMessage{
		ID:          row.ID,
		Recipient:   row.Recipient,
		Body:        row.Body,
		Provider:    row.Provider,
		Status:      domain.MessageStatus(row.Status),
		CompletedAt: parseNullTime(row.CompletedAt),
		LastRunAt:   parseNullTime(row.LastRunAt),
	}

	if t, err := parseTime(row.ScheduledTime); err == nil {
		msg.ScheduledTime = t
	} else {
		logger.Warnf("Scheduled message %d has malformed scheduled_time %q", row.ID, row.ScheduledTime)
	}
	if t, err := parseTime(row.CreatedAt); err == nil {
		msg.CreatedAt = t
	}

	kind, err := domain.ParseRecurrenceKind(row.Recurrence)
	if err != nil {
		kind = domain.RecurrenceKind(row.Recurrence)
	}
	msg.Recurrence = domain.Recurrence{Kind: kind}

	if kind == domain.RecurrenceCustom && row.IntervalData.Valid {
		days, err := domain.ParseIntervalData(row.IntervalData.String)
		if err != nil {
			logger.Warnf("Scheduled message %d has undecodable interval data: %v", row.ID, err)
			msg.RawIntervalData = row.IntervalData.String
		} else {
			msg.Recurrence.DaysInterval = days
		}
	}

	return msg
}

func toDomainList(rows []scheduledMessageRow) []domain.ScheduledMessage {
	messages := make([]domain.ScheduledMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.toDomain())
	}
	return messages
}

// GetDue returns pending messages whose scheduled time is at or before now, oldest first.
func (r *ScheduledMessageRepository) GetDue(ctx context.Context, now time.Time) ([]domain.ScheduledMessage, error) {
	query := r.db.Rebind(`
		SELECT ` + selectColumns + `
		FROM scheduled_messages
		WHERE status = 'pending' AND scheduled_time <= ?
		ORDER BY scheduled_time ASC, id ASC
	`)

	var rows []scheduledMessageRow
	if err := r.db.SelectContext(ctx, &rows, query, formatTime(now)); err != nil {
		return nil, fmt.Errorf("failed to get due messages: %w", err)
	}

	return toDomainList(rows), nil
}

func (r *ScheduledMessageRepository) Create(ctx context.Context, msg domain.NewScheduledMessage) (int64, error) {
	status := msg.Status
	if status == "" {
		status = domain.StatusPending
	}
	recurrence := msg.Recurrence.Normalized()

	args := []any{
		msg.Recipient,
		msg.Body,
		formatTime(msg.ScheduledTime),
		msg.Provider,
		string(recurrence.Kind),
		nullIntervalData(recurrence),
		string(status),
		formatTime(time.Now()),
	}

	query := `
		INSERT INTO scheduled_messages (recipient, body, scheduled_time, provider, recurrence, interval_data, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if r.db.DriverName() == "postgres" {
		var id int64
		if err := r.db.QueryRowxContext(ctx, r.db.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to create scheduled message: %w", err)
		}
		return id, nil
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to create scheduled message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return id, nil
}

// GetByID returns domain.ErrMessageNotFound when no row matches.
func (r *ScheduledMessageRepository) GetByID(ctx context.Context, id int64) (*domain.ScheduledMessage, error) {
	query := r.db.Rebind(`SELECT ` + selectColumns + ` FROM scheduled_messages WHERE id = ?`)

	var row scheduledMessageRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get scheduled message: %w", err)
	}

	msg := row.toDomain()
	return &msg, nil
}

// List returns pending messages, or every message when includeCompleted is set.
func (r *ScheduledMessageRepository) List(ctx context.Context, includeCompleted bool) ([]domain.ScheduledMessage, error) {
	query := `SELECT ` + selectColumns + ` FROM scheduled_messages`
	if !includeCompleted {
		query += ` WHERE status = 'pending'`
	}
	query += ` ORDER BY scheduled_time ASC, id ASC`

	var rows []scheduledMessageRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list scheduled messages: %w", err)
	}

	return toDomainList(rows), nil
}

// UpdateStatus sets the status and completion time of a message; a nil completedAt clears it.
func (r *ScheduledMessageRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.MessageStatus,
	completedAt *time.Time,
) error {
	query := r.db.Rebind(`UPDATE scheduled_messages SET status = ?, completed_at = ? WHERE id = ?`)

	if _, err := r.db.ExecContext(ctx, query, string(status), nullTime(completedAt), id); err != nil {
		return fmt.Errorf("failed to update message status: %w", err)
	}

	return nil
}

// Update applies the non-nil fields of patch. An empty patch is a no-op.
func (r *ScheduledMessageRepository) Update(ctx context.Context, id int64, patch domain.MessagePatch) error {
	var (
		sets []string
		args []any
	)

	if patch.Recipient != nil {
		sets = append(sets, "recipient = ?")
		args = append(args, *patch.Recipient)
	}
	if patch.Body != nil {
		sets = append(sets, "body = ?")
		args = append(args, *patch.Body)
	}
	if patch.ScheduledTime != nil {
		sets = append(sets, "scheduled_time = ?")
		args = append(args, formatTime(*patch.ScheduledTime))
	}
	if patch.Recurrence != nil {
		recurrence := patch.Recurrence.Normalized()
		sets = append(sets, "recurrence = ?", "interval_data = ?")
		args = append(args, string(recurrence.Kind), nullIntervalData(recurrence))
	}
	if patch.Provider != nil {
		sets = append(sets, "provider = ?")
		args = append(args, *patch.Provider)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}

	if len(sets) == 0 {
		return nil
	}

	query := r.db.Rebind(`UPDATE scheduled_messages SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update scheduled message: %w", err)
	}

	return nil
}

// Delete removes a message regardless of status and reports whether a row was deleted.
func (r *ScheduledMessageRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query := r.db.Rebind(`DELETE FROM scheduled_messages WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete scheduled message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}

// TouchLastRun records a processing attempt.
func (r *ScheduledMessageRepository) TouchLastRun(ctx context.Context, id int64, at time.Time) error {
	query := r.db.Rebind(`UPDATE scheduled_messages SET last_run_at = ? WHERE id = ?`)

	if _, err := r.db.ExecContext(ctx, query, formatTime(at), id); err != nil {
		return fmt.Errorf("failed to record last run: %w", err)
	}

	return nil
}

// GetStats returns message counts per status.
func (r *ScheduledMessageRepository) GetStats(ctx context.Context) (domain.MessageStats, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN status = 'sent' THEN 1 ELSE 0 END), 0)    AS sent,
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)  AS failed
		FROM scheduled_messages
	`

	var stats domain.MessageStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return domain.MessageStats{}, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats, nil
}

// Ping verifies the underlying connection.
func (r *ScheduledMessageRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
