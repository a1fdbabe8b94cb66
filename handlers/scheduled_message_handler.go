package handlers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/sms-scheduler/internal/domain"
	"github.com/onurcolak/sms-scheduler/pkg/response"
	"github.com/onurcolak/sms-scheduler/pkg/validator"
)

type messageScheduler interface {
	Schedule(ctx context.Context, req domain.ScheduleRequest) (int64, error)
	Cancel(ctx context.Context, id int64) error
	Update(ctx context.Context, id int64, upd domain.MessageUpdate) error
	ListScheduled(ctx context.Context, status *domain.MessageStatus) ([]domain.ScheduledMessage, error)
}

type statsReader interface {
	GetStats(ctx context.Context) (domain.MessageStats, error)
}

type cachedSendsReader interface {
	GetCachedMessages(ctx context.Context) ([]domain.SentMessageCache, error)
	GetCachedMessage(ctx context.Context, provider, providerMessageID string) (*domain.SentMessageCache, error)
}

type ScheduledMessageHandler struct {
	scheduler messageScheduler
	stats     statsReader
	cache     cachedSendsReader
}

func NewScheduledMessageHandler(
	sched messageScheduler,
	stats statsReader,
	cache cachedSendsReader,
) *ScheduledMessageHandler {
	return &ScheduledMessageHandler{
		scheduler: sched,
		stats:     stats,
		cache:     cache,
	}
}

type ScheduleMessageRequest struct {
	Recipient     string    `json:"recipient" validate:"required,e164"`
	Body          string    `json:"body" validate:"required,max=1600"`
	ScheduledTime time.Time `json:"scheduledTime" validate:"required,future"`
	Recurrence    string    `json:"recurrence,omitempty" validate:"omitempty,oneof=none daily weekly monthly custom"`
	DaysInterval  int       `json:"daysInterval,omitempty" validate:"omitempty,min=1"`
	Provider      string    `json:"provider,omitempty" validate:"omitempty,max=32"`
}

type UpdateMessageRequest struct {
	Recipient     *string    `json:"recipient,omitempty" validate:"omitempty,e164"`
	Body          *string    `json:"body,omitempty" validate:"omitempty,min=1,max=1600"`
	ScheduledTime *time.Time `json:"scheduledTime,omitempty" validate:"omitempty,future"`
	Recurrence    *string    `json:"recurrence,omitempty" validate:"omitempty,oneof=none daily weekly monthly custom"`
	DaysInterval  *int       `json:"daysInterval,omitempty" validate:"omitempty,min=1"`
	Provider      *string    `json:"provider,omitempty" validate:"omitempty,max=32"`
}

type ScheduleMessageResponse struct {
	ID int64 `json:"id"`
}

// ScheduleMessage godoc
// @Summary Schedule a message
// @Description Stores a one-shot or recurring SMS to be sent by the scheduler
// @Tags scheduled
// @Accept json
// @Produce json
// @Param X-API-Key header string true "API key for scheduled messages"
// @Param message body ScheduleMessageRequest true "Message to schedule"
// @Success 201 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/scheduled [post]
func (h *ScheduledMessageHandler) ScheduleMessage(c echo.Context) error {
	var req ScheduleMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	recurrence, err := toRecurrence(req.Recurrence, req.DaysInterval)
	if err != nil {
		return response.FromError(c, err)
	}

	id, err := h.scheduler.Schedule(c.Request().Context(), domain.ScheduleRequest{
		Recipient:     req.Recipient,
		Body:          req.Body,
		ScheduledTime: req.ScheduledTime,
		Recurrence:    recurrence,
		Provider:      req.Provider,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Message scheduled successfully", ScheduleMessageResponse{ID: id})
}

// ListScheduledMessages godoc
// @Summary List scheduled messages
// @Description Returns every stored message with an optional status filter
// @Tags scheduled
// @Accept json
// @Produce json
// @Param X-API-Key header string true "API key for scheduled messages"
// @Param status query string false "Filter by status (pending, sent, failed)"
// @Success 200 {object} response.ListResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/scheduled [get]
func (h *ScheduledMessageHandler) ListScheduledMessages(c echo.Context) error {
	var status *domain.MessageStatus
	if statusStr := c.QueryParam("status"); statusStr != "" {
		parsed := domain.MessageStatus(statusStr)
		if !parsed.Valid() {
			return response.BadRequestWithMessage(c, "status must be one of pending, sent, failed")
		}
		status = &parsed
	}

	messages, err := h.scheduler.ListScheduled(c.Request().Context(), status)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.List(c, messages, len(messages))
}

// UpdateScheduledMessage godoc
// @Summary Update a scheduled message
// @Description Changes any subset of recipient, body, time, recurrence and provider
// @Tags scheduled
// @Accept json
// @Produce json
// @Param X-API-Key header string true "API key for scheduled messages"
// @Param id path int true "Scheduled message ID"
// @Param message body UpdateMessageRequest true "Fields to change"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/scheduled/{id} [patch]
func (h *ScheduledMessageHandler) UpdateScheduledMessage(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	var req UpdateMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	upd := domain.MessageUpdate{
		Recipient:     req.Recipient,
		Body:          req.Body,
		ScheduledTime: req.ScheduledTime,
		Provider:      req.Provider,
	}

	if req.DaysInterval != nil && req.Recurrence == nil {
		return response.UnprocessableEntity(c, fmt.Errorf("%w: daysInterval requires recurrence", domain.ErrInvalidRecurrence))
	}

	if req.Recurrence != nil {
		kind := *req.Recurrence
		days := 0
		if req.DaysInterval != nil {
			days = *req.DaysInterval
		}

		recurrence, err := toRecurrence(kind, days)
		if err != nil {
			return response.FromError(c, err)
		}
		upd.Recurrence = &recurrence
	}

	if err := h.scheduler.Update(c.Request().Context(), id, upd); err != nil {
		return response.FromError(c, err)
	}

	return response.OkWithMessage(c, "Message updated successfully", ScheduleMessageResponse{ID: id})
}

// CancelScheduledMessage godoc
// @Summary Cancel a scheduled message
// @Description Deletes a message regardless of its status
// @Tags scheduled
// @Accept json
// @Produce json
// @Param X-API-Key header string true "API key for scheduled messages"
// @Param id path int true "Scheduled message ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/scheduled/{id} [delete]
func (h *ScheduledMessageHandler) CancelScheduledMessage(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	if err := h.scheduler.Cancel(c.Request().Context(), id); err != nil {
		return response.FromError(c, err)
	}

	return response.OkWithMessage(c, "Message cancelled successfully", ScheduleMessageResponse{ID: id})
}

// GetStats godoc
// @Summary Get message statistics
// @Description Returns count of scheduled messages by status
// @Tags scheduled
// @Accept json
// @Produce json
// @Param X-API-Key header string true "API key for scheduled messages"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/scheduled/stats [get]
func (h *ScheduledMessageHandler) GetStats(c echo.Context) error {
	stats, err := h.stats.GetStats(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, map[string]any{
		"pending": stats.Pending,
		"sent":    stats.Sent,
		"failed":  stats.Failed,
		"total":   stats.Total(),
	})
}

// GetCachedMessages godoc
// @Summary Get recently delivered messages
// @Description Returns provider receipts cached in Valkey during the last 24 hours
// @Tags scheduled
// @Accept json
// @Produce json
// @Param X-API-Key header string true "API key for scheduled messages"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/scheduled/cached [get]
func (h *ScheduledMessageHandler) GetCachedMessages(c echo.Context) error {
	cached, err := h.cache.GetCachedMessages(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, cached)
}

// GetCachedMessage godoc
// @Summary Get one recently delivered message
// @Description Looks up a cached provider receipt by provider name and provider message ID
// @Tags scheduled
// @Accept json
// @Produce json
// @Param X-API-Key header string true "API key for scheduled messages"
// @Param provider path string true "Provider name"
// @Param id path string true "Provider message ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/scheduled/cached/{provider}/{id} [get]
func (h *ScheduledMessageHandler) GetCachedMessage(c echo.Context) error {
	cached, err := h.cache.GetCachedMessage(c.Request().Context(), c.Param("provider"), c.Param("id"))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Ok(c, cached)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive integer")
	}
	return id, nil
}

func toRecurrence(kind string, days int) (domain.Recurrence, error) {
	parsed, err := domain.ParseRecurrenceKind(kind)
	if err != nil {
		return domain.Recurrence{}, err
	}

	r := domain.Recurrence{Kind: parsed, DaysInterval: days}.Normalized()
	if err := r.Validate(); err != nil {
		return domain.Recurrence{}, err
	}
	return r, nil
}
