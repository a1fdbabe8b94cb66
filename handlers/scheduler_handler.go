package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/sms-scheduler/internal/domain"
	"github.com/onurcolak/sms-scheduler/internal/scheduler"
	"github.com/onurcolak/sms-scheduler/pkg/response"
)

type schedulerControl interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
	RunNow(ctx context.Context) []domain.SendResult
	GetStatus() scheduler.Status
}

type SchedulerHandler struct {
	scheduler schedulerControl
	// ctx outlives individual requests so the poll job is not tied to the start request.
	ctx context.Context
}

type RunResult struct {
	Processed int      `json:"processed"`
	Sent      int      `json:"sent"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

func NewSchedulerHandler(sched schedulerControl, ctx context.Context) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: sched,
		ctx:       ctx,
	}
}

// StartScheduler godoc
// @Summary Start the message scheduler
// @Description Starts polling for due scheduled messages
// @Tags scheduler
// @Accept json
// @Produce json
// @Param X-API-Key header string true "API key for scheduler"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/scheduler/start [post]
func (h *SchedulerHandler) StartScheduler(c echo.Context) error {
	if h.scheduler.IsRunning() {
		return response.OkWithMessage(c, "Scheduler is already running", h.scheduler.GetStatus())
	}

	if err := h.scheduler.Start(h.ctx); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Scheduler started successfully", h.scheduler.GetStatus())
}

// StopScheduler godoc
// @Summary Stop the message scheduler
// @Description Stops polling; an in-flight poll may still finish after the response
// @Tags scheduler
// @Accept json
// @Produce json
// @Param X-API-Key header string true "API key for scheduler"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/scheduler/stop [post]
func (h *SchedulerHandler) StopScheduler(c echo.Context) error {
	if !h.scheduler.IsRunning() {
		return response.OkWithMessage(c, "Scheduler is already stopped", h.scheduler.GetStatus())
	}

	if err := h.scheduler.Stop(); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Scheduler stopped successfully", h.scheduler.GetStatus())
}

// RunScheduler godoc
// @Summary Run one poll cycle now
// @Description Processes every due message immediately, whether or not the scheduler is running
// @Tags scheduler
// @Accept json
// @Produce json
// @Param X-API-Key header string true "API key for scheduler"
// @Success 200 {object} response.SuccessResponse
// @Router /api/v1/scheduler/run [post]
func (h *SchedulerHandler) RunScheduler(c echo.Context) error {
	results := h.scheduler.RunNow(c.Request().Context())

	summary := RunResult{Processed: len(results)}
	for _, r := range results {
		if r.Success {
			summary.Sent++
			continue
		}
		summary.Failed++
		if r.Error != nil {
			summary.Errors = append(summary.Errors, r.Error.Error())
		}
	}

	return response.OkWithMessage(c, "Poll cycle completed", summary)
}

// GetSchedulerStatus godoc
// @Summary Get scheduler status
// @Description Returns the current status of the message scheduler
// @Tags scheduler
// @Accept json
// @Produce json
// @Param X-API-Key header string true "API key for scheduler"
// @Success 200 {object} response.SuccessResponse
// @Router /api/v1/scheduler/status [get]
func (h *SchedulerHandler) GetSchedulerStatus(c echo.Context) error {
	return response.Ok(c, h.scheduler.GetStatus())
}
