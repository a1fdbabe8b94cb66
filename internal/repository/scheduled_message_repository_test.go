package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onurcolak/sms-scheduler/internal/domain"
	"github.com/onurcolak/sms-scheduler/pkg/database"
)

func newTestRepo(t *testing.T) (*ScheduledMessageRepository, *sqlx.DB) {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.RunMigrations(db))

	return NewScheduledMessageRepository(db), db
}

func at(s string) time.Time {
	t, err := time.ParseInLocation(domain.TimeLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestScheduledMessageRepository_CreateAndGetByID(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, domain.NewScheduledMessage{
		Recipient:     "+15550001111",
		Body:          "hello",
		ScheduledTime: at("2024-05-01 10:00:00"),
		Recurrence:    domain.EveryNDays(5),
		Provider:      "twilio",
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	msg, err := repo.GetByID(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, msg.ID)
	assert.Equal(t, "+15550001111", msg.Recipient)
	assert.Equal(t, "hello", msg.Body)
	assert.Equal(t, "twilio", msg.Provider)
	assert.Equal(t, domain.StatusPending, msg.Status)
	assert.True(t, msg.ScheduledTime.Equal(at("2024-05-01 10:00:00")))
	assert.Equal(t, domain.EveryNDays(5), msg.Recurrence)
	assert.Nil(t, msg.CompletedAt)
	assert.Nil(t, msg.LastRunAt)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestScheduledMessageRepository_GetByIDNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	msg, err := repo.GetByID(context.Background(), 42)
	assert.Nil(t, msg)
	assert.ErrorIs(t, err, domain.ErrMessageNotFound)
}

func TestScheduledMessageRepository_GetDue(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	past, err := repo.Create(ctx, domain.NewScheduledMessage{Recipient: "a", Body: "past", ScheduledTime: at("2024-05-01 09:00:00")})
	require.NoError(t, err)
	exact, err := repo.Create(ctx, domain.NewScheduledMessage{Recipient: "b", Body: "exact", ScheduledTime: at("2024-05-01 10:00:00")})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.NewScheduledMessage{Recipient: "c", Body: "future", ScheduledTime: at("2024-05-01 10:00:01")})
	require.NoError(t, err)
	sent, err := repo.Create(ctx, domain.NewScheduledMessage{Recipient: "d", Body: "done", ScheduledTime: at("2024-05-01 08:00:00")})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, sent, domain.StatusSent, nil))

	due, err := repo.GetDue(ctx, at("2024-05-01 10:00:00"))
	require.NoError(t, err)

	require.Len(t, due, 2)
	assert.Equal(t, past, due[0].ID)
	assert.Equal(t, exact, due[1].ID)
}

func TestScheduledMessageRepository_GetDueComparesInUTC(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, domain.NewScheduledMessage{Recipient: "a", Body: "x", ScheduledTime: at("2024-05-01 10:00:00")})
	require.NoError(t, err)

	// 11:30 at UTC+2 is 09:30 UTC, before the scheduled time.
	plusTwo := time.FixedZone("UTC+2", 2*60*60)
	due, err := repo.GetDue(ctx, time.Date(2024, 5, 1, 11, 30, 0, 0, plusTwo))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestScheduledMessageRepository_UpdateAppliesOnlySetFields(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, domain.NewScheduledMessage{
		Recipient:     "+1",
		Body:          "before",
		ScheduledTime: at("2024-05-01 10:00:00"),
		Recurrence:    domain.EveryNDays(3),
	})
	require.NoError(t, err)

	body := "after"
	next := at("2024-05-04 10:00:00")
	weekly := domain.Weekly()
	require.NoError(t, repo.Update(ctx, id, domain.MessagePatch{
		MessageUpdate: domain.MessageUpdate{Body: &body, ScheduledTime: &next, Recurrence: &weekly},
	}))

	msg, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "+1", msg.Recipient)
	assert.Equal(t, "after", msg.Body)
	assert.True(t, msg.ScheduledTime.Equal(next))
	assert.Equal(t, domain.Weekly(), msg.Recurrence)

	require.NoError(t, repo.Update(ctx, id, domain.MessagePatch{}))
}

func TestScheduledMessageRepository_UpdateStatusAndTouchLastRun(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, domain.NewScheduledMessage{Recipient: "+1", Body: "x", ScheduledTime: at("2024-05-01 10:00:00")})
	require.NoError(t, err)

	done := at("2024-05-01 10:00:30")
	require.NoError(t, repo.TouchLastRun(ctx, id, done))
	require.NoError(t, repo.UpdateStatus(ctx, id, domain.StatusFailed, &done))

	msg, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, msg.Status)
	require.NotNil(t, msg.CompletedAt)
	assert.True(t, msg.CompletedAt.Equal(done))
	require.NotNil(t, msg.LastRunAt)
	assert.True(t, msg.LastRunAt.Equal(done))
}

func TestScheduledMessageRepository_DeleteAnyStatus(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, domain.NewScheduledMessage{Recipient: "+1", Body: "x", ScheduledTime: at("2024-05-01 10:00:00")})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, id, domain.StatusSent, nil))

	deleted, err := repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestScheduledMessageRepository_ListAndStats(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for i, status := range []domain.MessageStatus{domain.StatusPending, domain.StatusSent, domain.StatusFailed, domain.StatusPending} {
		id, err := repo.Create(ctx, domain.NewScheduledMessage{
			Recipient:     "+1",
			Body:          "x",
			ScheduledTime: at("2024-05-01 10:00:00").Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		require.NoError(t, repo.UpdateStatus(ctx, id, status, nil))
	}

	pending, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.MessageStats{Pending: 2, Sent: 1, Failed: 1}, stats)
}

func TestScheduledMessageRepository_DecodesLegacyRows(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	_, err := db.Exec(`
		INSERT INTO scheduled_messages (recipient, body, scheduled_time, provider, recurrence, interval_data, status, created_at)
		VALUES
			('+1', 'bad blob', '2024-05-01 10:00:00', '', 'custom', '{not json', 'pending', '2024-04-01 00:00:00'),
			('+2', 'no blob', '2024-05-01 10:00:00', '', 'custom', NULL, 'pending', '2024-04-01 00:00:00'),
			('+3', 'odd kind', '2024-05-01 10:00:00', '', 'yearly', NULL, 'pending', '2024-04-01 00:00:00')
	`)
	require.NoError(t, err)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 3)

	byBody := map[string]domain.ScheduledMessage{}
	for _, m := range all {
		byBody[m.Body] = m
	}

	assert.Equal(t, "{not json", byBody["bad blob"].RawIntervalData)
	assert.Equal(t, domain.RecurrenceCustom, byBody["bad blob"].Recurrence.Kind)
	assert.Zero(t, byBody["bad blob"].Recurrence.DaysInterval)

	assert.Empty(t, byBody["no blob"].RawIntervalData)
	assert.Zero(t, byBody["no blob"].Recurrence.DaysInterval)

	assert.Equal(t, domain.RecurrenceKind("yearly"), byBody["odd kind"].Recurrence.Kind)
	assert.Error(t, byBody["odd kind"].Recurrence.Validate())
}
