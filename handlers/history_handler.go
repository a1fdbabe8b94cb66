package handlers

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/sms-scheduler/internal/domain"
	"github.com/onurcolak/sms-scheduler/pkg/response"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

type historyReader interface {
	GetHistory(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
}

// HistoryHandler serves the permanent log of delivery attempts.
type HistoryHandler struct {
	history historyReader
}

func NewHistoryHandler(history historyReader) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// ListHistory godoc
// @Summary List delivery history
// @Description Returns the most recent delivery attempts, successful and failed, newest first
// @Tags history
// @Accept json
// @Produce json
// @Param X-API-Key header string true "API key for scheduled messages"
// @Param limit query int false "Maximum number of entries (default 20, max 500)"
// @Success 200 {object} response.ListResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/history [get]
func (h *HistoryHandler) ListHistory(c echo.Context) error {
	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxHistoryLimit {
			return response.BadRequestWithMessage(c, "limit must be between 1 and 500")
		}
		limit = parsed
	}

	entries, err := h.history.GetHistory(c.Request().Context(), limit)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.List(c, entries, len(entries))
}
