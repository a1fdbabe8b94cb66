package routes

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/onurcolak/sms-scheduler/environments"
	"github.com/onurcolak/sms-scheduler/handlers"
	"github.com/onurcolak/sms-scheduler/internal/middlewares"
)

// RegisterRoutes registers all API routes with middleware
func RegisterRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	messageHandler *handlers.ScheduledMessageHandler,
	historyHandler *handlers.HistoryHandler,
	schedulerHandler *handlers.SchedulerHandler,
	cfg *environments.Config,
) {
	e.GET("/health", healthHandler.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/api/v1")

	scheduled := v1.Group("/scheduled", middlewares.APIKeyAuth(cfg.Auth.MessagesAPIKey))

	scheduled.GET("", messageHandler.ListScheduledMessages)
	scheduled.POST("", messageHandler.ScheduleMessage)
	scheduled.GET("/stats", messageHandler.GetStats)
	scheduled.GET("/cached", messageHandler.GetCachedMessages)
	scheduled.GET("/cached/:provider/:id", messageHandler.GetCachedMessage)
	scheduled.PATCH("/:id", messageHandler.UpdateScheduledMessage)
	scheduled.DELETE("/:id", messageHandler.CancelScheduledMessage)

	v1.GET("/history", historyHandler.ListHistory, middlewares.APIKeyAuth(cfg.Auth.MessagesAPIKey))

	schedulerGroup := v1.Group("/scheduler", middlewares.APIKeyAuth(cfg.Auth.SchedulerAPIKey))

	schedulerGroup.POST("/start", schedulerHandler.StartScheduler)
	schedulerGroup.POST("/stop", schedulerHandler.StopScheduler)
	schedulerGroup.POST("/run", schedulerHandler.RunScheduler)
	schedulerGroup.GET("/status", schedulerHandler.GetSchedulerStatus)
}
