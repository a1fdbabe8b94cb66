package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onurcolak/sms-scheduler/internal/domain"
)

func TestHistoryRepository_RecordsSuccessAndFailure(t *testing.T) {
	_, db := newTestRepo(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	_, err := repo.Record(ctx, domain.HistoryEntry{
		ScheduledID:       7,
		Recipient:         "+15550001111",
		Body:              "hello",
		Provider:          "twilio",
		Status:            domain.StatusSent,
		ProviderMessageID: "SM123",
		SentAt:            at("2024-05-01 10:00:00"),
	})
	require.NoError(t, err)

	failedID, err := repo.Record(ctx, domain.HistoryEntry{
		Recipient: "+15550002222",
		Body:      "immediate",
		Provider:  "textbelt",
		Status:    domain.StatusFailed,
		Error:     "TextBelt API error: Out of quota",
		SentAt:    at("2024-05-01 11:00:00"),
	})
	require.NoError(t, err)
	assert.Positive(t, failedID)

	entries, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	failed := entries[0]
	assert.Equal(t, failedID, failed.ID)
	assert.Equal(t, domain.StatusFailed, failed.Status)
	assert.Equal(t, "TextBelt API error: Out of quota", failed.Error)
	assert.Zero(t, failed.ScheduledID)
	assert.Empty(t, failed.ProviderMessageID)
	assert.True(t, failed.SentAt.Equal(at("2024-05-01 11:00:00")))

	sent := entries[1]
	assert.Equal(t, int64(7), sent.ScheduledID)
	assert.Equal(t, domain.StatusSent, sent.Status)
	assert.Equal(t, "SM123", sent.ProviderMessageID)
	assert.Empty(t, sent.Error)
}

func TestHistoryRepository_ListHonoursLimit(t *testing.T) {
	_, db := newTestRepo(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	for _, ts := range []string{"2024-05-01 08:00:00", "2024-05-01 09:00:00", "2024-05-01 10:00:00"} {
		_, err := repo.Record(ctx, domain.HistoryEntry{
			Recipient: "+15550001111",
			Body:      ts,
			Status:    domain.StatusSent,
			SentAt:    at(ts),
		})
		require.NoError(t, err)
	}

	entries, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2024-05-01 10:00:00", entries[0].Body)
	assert.Equal(t, "2024-05-01 09:00:00", entries[1].Body)
}
