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
	"github.com/onurcolak/sms-scheduler/internal/scheduler"
)

type fakeSchedulerControl struct {
	running  bool
	startCtx context.Context
	results  []domain.SendResult
}

func (f *fakeSchedulerControl) Start(ctx context.Context) error {
	f.startCtx = ctx
	f.running = true
	return nil
}

func (f *fakeSchedulerControl) Stop() error {
	f.running = false
	return nil
}

func (f *fakeSchedulerControl) IsRunning() bool { return f.running }

func (f *fakeSchedulerControl) RunNow(ctx context.Context) []domain.SendResult { return f.results }

func (f *fakeSchedulerControl) GetStatus() scheduler.Status {
	return scheduler.Status{Running: f.running}
}

type appCtxKey struct{}

func TestStartScheduler_UsesApplicationContext(t *testing.T) {
	appCtx := context.WithValue(context.Background(), appCtxKey{}, "app")
	sched := &fakeSchedulerControl{}
	handler := NewSchedulerHandler(sched, appCtx)

	c, rec := newJSONContext(http.MethodPost, "/api/v1/scheduler/start", "")
	require.NoError(t, handler.StartScheduler(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sched.running)
	assert.Equal(t, "app", sched.startCtx.Value(appCtxKey{}))
}

func TestStopScheduler_AlreadyStopped(t *testing.T) {
	handler := NewSchedulerHandler(&fakeSchedulerControl{}, context.Background())

	c, rec := newJSONContext(http.MethodPost, "/api/v1/scheduler/stop", "")
	require.NoError(t, handler.StopScheduler(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already stopped")
}

func TestRunScheduler_SummarizesResults(t *testing.T) {
	sched := &fakeSchedulerControl{results: []domain.SendResult{
		{ScheduledID: 1, Success: true},
		{ScheduledID: 2, Success: false, Error: errors.New("provider down")},
		{ScheduledID: 3, Success: true},
	}}
	handler := NewSchedulerHandler(sched, context.Background())

	c, rec := newJSONContext(http.MethodPost, "/api/v1/scheduler/run", "")
	require.NoError(t, handler.RunScheduler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Processed)
	assert.Equal(t, 2, resp.Data.Sent)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, []string{"provider down"}, resp.Data.Errors)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func TestHealth_ComponentStatuses(t *testing.T) {
	tests := []struct {
		name    string
		db      pinger
		cache   pinger
		overall string
		valkey  string
	}{
		{"all up", fakePinger{}, fakePinger{}, "ok", "up"},
		{"cache disabled", fakePinger{}, nil, "ok", "disabled"},
		{"cache down", fakePinger{}, fakePinger{err: errors.New("dial")}, "degraded", "down"},
		{"database down", fakePinger{err: errors.New("locked")}, fakePinger{}, "down", "up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.db, tt.cache, &fakeSchedulerControl{running: true})

			c, rec := newJSONContext(http.MethodGet, "/health", "")
			require.NoError(t, handler.Health(c))

			var body struct {
				Status     string `json:"status"`
				Components map[string]struct {
					Status string `json:"status"`
				} `json:"components"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.overall, body.Status)
			assert.Equal(t, tt.valkey, body.Components["valkey"].Status)
			assert.Equal(t, "running", body.Components["scheduler"].Status)
		})
	}
}
