package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onurcolak/sms-scheduler/internal/domain"
	"github.com/onurcolak/sms-scheduler/pkg/response"
)

type fakeHistory struct {
	entries   []domain.HistoryEntry
	lastLimit int
	err       error
}

func (f *fakeHistory) GetHistory(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	f.lastLimit = limit
	return f.entries, f.err
}

func TestListHistory_DefaultLimit(t *testing.T) {
	history := &fakeHistory{entries: []domain.HistoryEntry{
		{ID: 2, Recipient: "+15551234567", Status: domain.StatusFailed, Error: "provider down"},
		{ID: 1, Recipient: "+15551234567", Status: domain.StatusSent, ProviderMessageID: "SM1"},
	}}
	handler := NewHistoryHandler(history)

	c, rec := newJSONContext(http.MethodGet, "/api/v1/history", "")
	require.NoError(t, handler.ListHistory(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultHistoryLimit, history.lastLimit)

	var resp response.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Contains(t, rec.Body.String(), "provider down")
}

func TestListHistory_Limit(t *testing.T) {
	history := &fakeHistory{}
	handler := NewHistoryHandler(history)

	c, rec := newJSONContext(http.MethodGet, "/api/v1/history?limit=5", "")
	require.NoError(t, handler.ListHistory(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, history.lastLimit)

	for _, bad := range []string{"0", "-1", "abc", "501"} {
		history.lastLimit = 0
		c, rec = newJSONContext(http.MethodGet, "/api/v1/history?limit="+bad, "")
		require.NoError(t, handler.ListHistory(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", bad)
		assert.Zero(t, history.lastLimit)
	}
}

func TestListHistory_Error(t *testing.T) {
	handler := NewHistoryHandler(&fakeHistory{err: errors.New("no such table: message_history")})

	c, rec := newJSONContext(http.MethodGet, "/api/v1/history", "")
	require.NoError(t, handler.ListHistory(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
