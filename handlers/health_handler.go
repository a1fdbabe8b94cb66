package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type runningReporter interface {
	IsRunning() bool
}

// HealthHandler handles health checks.
type HealthHandler struct {
	db           pinger
	cache        pinger
	scheduler    runningReporter
	checkTimeout time.Duration
}

// NewHealthHandler builds the handler. cache may be nil when Valkey is disabled.
func NewHealthHandler(db pinger, cache pinger, sched runningReporter) *HealthHandler {
	return &HealthHandler{
		db:           db,
		cache:        cache,
		scheduler:    sched,
		checkTimeout: 2 * time.Second,
	}
}

// Health returns overall status and basic component statuses.
// @Summary Health check
// @Description Returns overall status with database, Valkey and scheduler state
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	overallStatus := "ok"

	dbStatus := "up"
	if h.db == nil {
		dbStatus = "down"
		overallStatus = "down"
	} else if err := h.db.Ping(ctx); err != nil {
		dbStatus = "down"
		overallStatus = "down"
	}

	cacheStatus := "disabled"
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			cacheStatus = "down"
			if overallStatus == "ok" {
				overallStatus = "degraded"
			}
		} else {
			cacheStatus = "up"
		}
	}

	schedulerStatus := "stopped"
	if h.scheduler != nil && h.scheduler.IsRunning() {
		schedulerStatus = "running"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().Format(time.RFC3339),
		"components": map[string]any{
			"database": map[string]any{
				"status": dbStatus,
			},
			"valkey": map[string]any{
				"status": cacheStatus,
			},
			"scheduler": map[string]any{
				"status": schedulerStatus,
			},
		},
	})
}
