package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/sms-scheduler/pkg/logger"
)

// scheduled_time, created_at, completed_at, last_run_at and sent_at are stored as
// "YYYY-MM-DD HH:MM:SS" UTC text on every dialect so due-scans compare lexically.
var schemas = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS scheduled_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recipient TEXT NOT NULL,
			body TEXT NOT NULL,
			scheduled_time TEXT NOT NULL,
			provider TEXT NOT NULL DEFAULT '',
			recurrence TEXT NOT NULL DEFAULT 'none',
			interval_data TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TEXT NOT NULL,
			completed_at TEXT,
			last_run_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scheduled_messages_due ON scheduled_messages (status, scheduled_time)`,
		`CREATE TABLE IF NOT EXISTS message_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scheduled_id INTEGER,
			recipient TEXT NOT NULL,
			body TEXT NOT NULL,
			provider TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			provider_message_id TEXT NOT NULL DEFAULT '',
			error TEXT,
			sent_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_message_history_sent_at ON message_history (sent_at)`,
	},
	DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS scheduled_messages (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			recipient VARCHAR(32) NOT NULL,
			body TEXT NOT NULL,
			scheduled_time CHAR(19) NOT NULL,
			provider VARCHAR(32) NOT NULL DEFAULT '',
			recurrence VARCHAR(16) NOT NULL DEFAULT 'none',
			interval_data TEXT,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			created_at CHAR(19) NOT NULL,
			completed_at CHAR(19),
			last_run_at CHAR(19),
			INDEX idx_scheduled_messages_due (status, scheduled_time)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		`CREATE TABLE IF NOT EXISTS message_history (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			scheduled_id BIGINT NULL,
			recipient VARCHAR(32) NOT NULL,
			body TEXT NOT NULL,
			provider VARCHAR(32) NOT NULL DEFAULT '',
			status VARCHAR(16) NOT NULL,
			provider_message_id VARCHAR(128) NOT NULL DEFAULT '',
			error TEXT,
			sent_at CHAR(19) NOT NULL,
			INDEX idx_message_history_sent_at (sent_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS scheduled_messages (
			id BIGSERIAL PRIMARY KEY,
			recipient VARCHAR(32) NOT NULL,
			body TEXT NOT NULL,
			scheduled_time CHAR(19) NOT NULL,
			provider VARCHAR(32) NOT NULL DEFAULT '',
			recurrence VARCHAR(16) NOT NULL DEFAULT 'none',
			interval_data TEXT,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			created_at CHAR(19) NOT NULL,
			completed_at CHAR(19),
			last_run_at CHAR(19)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scheduled_messages_due ON scheduled_messages (status, scheduled_time)`,
		`CREATE TABLE IF NOT EXISTS message_history (
			id BIGSERIAL PRIMARY KEY,
			scheduled_id BIGINT,
			recipient VARCHAR(32) NOT NULL,
			body TEXT NOT NULL,
			provider VARCHAR(32) NOT NULL DEFAULT '',
			status VARCHAR(16) NOT NULL,
			provider_message_id VARCHAR(128) NOT NULL DEFAULT '',
			error TEXT,
			sent_at CHAR(19) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_message_history_sent_at ON message_history (sent_at)`,
	},
}

func RunMigrations(db *sqlx.DB) error {
	statements, ok := schemas[db.DriverName()]
	if !ok {
		return fmt.Errorf("no migrations for driver %q", db.DriverName())
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	logger.Infof("Database migrations completed")

	return nil
}

// SeedTestData inserts a handful of pending messages into an empty table.
func SeedTestData(db *sqlx.DB, now time.Time) error {
	var count int

	err := db.Get(&count, "SELECT COUNT(*) FROM scheduled_messages")
	if err != nil {
		return err
	}

	if count > 0 {
		logger.Infof("Database already has %d scheduled messages, skipping seed", count)
		return nil
	}

	testMessages := []struct {
		recipient    string
		body         string
		offset       time.Duration
		recurrence   string
		intervalData any
	}{
		{"+905551234567", "Hello! This is a one-off test message.", time.Minute, "none", nil},
		{"+905559876543", "Daily reminder: drink some water.", 2 * time.Minute, "daily", nil},
		{"+905551112233", "Weekly report is ready.", time.Hour, "weekly", nil},
		{"+905554445566", "Your monthly invoice is available.", 24 * time.Hour, "monthly", nil},
		{"+905557778899", "Plants need watering again.", 5 * time.Minute, "custom", `{"days_interval":3}`},
	}

	query := db.Rebind(`
		INSERT INTO scheduled_messages (recipient, body, scheduled_time, provider, recurrence, interval_data, status, created_at)
		VALUES (?, ?, ?, '', ?, ?, 'pending', ?)
	`)

	createdAt := now.UTC().Format("2006-01-02 15:04:05")
	for _, msg := range testMessages {
		scheduled := now.Add(msg.offset).UTC().Format("2006-01-02 15:04:05")
		_, err := db.Exec(query, msg.recipient, msg.body, scheduled, msg.recurrence, msg.intervalData, createdAt)
		if err != nil {
			return fmt.Errorf("failed to seed test data: %w", err)
		}
	}

	logger.Infof("Seeded %d scheduled messages", len(testMessages))
	return nil
}
