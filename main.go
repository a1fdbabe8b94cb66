package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/onurcolak/sms-scheduler/environments"
	"github.com/onurcolak/sms-scheduler/handlers"
	"github.com/onurcolak/sms-scheduler/internal/bootstrap"
	"github.com/onurcolak/sms-scheduler/internal/middlewares"
	"github.com/onurcolak/sms-scheduler/pkg/logger"
	"github.com/onurcolak/sms-scheduler/pkg/validator"
	"github.com/onurcolak/sms-scheduler/routes"

	_ "github.com/onurcolak/sms-scheduler/docs" // swagger docs
)

// @title SMS Scheduler API
// @version 1.0
// @description Deferred and recurring SMS delivery service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @schemes http https
func main() {
	// Load config
	cfg := environments.Load()

	logger.Init(cfg.Log.Level, cfg.Log.Format)

	// Hard-fail if required secrets are missing
	if cfg.Auth.MessagesAPIKey == "" {
		logger.Fatalf("MESSAGES_API_KEY is required but not set")
	}
	if cfg.Auth.SchedulerAPIKey == "" {
		logger.Fatalf("SCHEDULER_API_KEY is required but not set")
	}

	logger.Infof("Starting SMS Scheduler...")

	app, err := bootstrap.New(cfg, bootstrap.Options{
		Seed: environments.GetEnvAsBool("SEED_DATA", false),
	})
	if err != nil {
		logger.Fatalf("Failed to initialize application: %v", err)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(app.Repo, app.CachePinger(), app.Scheduler)
	messageHandler := handlers.NewScheduledMessageHandler(app.Scheduler, app.Repo, app.Delivery)
	historyHandler := handlers.NewHistoryHandler(app.Delivery)
	schedulerHandler := handlers.NewSchedulerHandler(app.Scheduler, ctx)

	if cfg.Scheduler.AutoStart {
		logger.Infof("Auto-starting scheduler...")
		if err := app.Scheduler.Start(ctx); err != nil {
			logger.Warnf("Failed to auto-start scheduler: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middlewares.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			middlewares.APIKeyHeader,
		},
	}))

	// Setup routes
	routes.RegisterRoutes(e, healthHandler, messageHandler, historyHandler, schedulerHandler, cfg)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		logger.Infof("Swagger docs available at http://localhost%s/swagger/index.html", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	// Cancelling ctx also stops the scheduler's poll job.
	cancel()

	// Shutdown HTTP server (with timeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	app.Close()

	logger.Infof("Graceful shutdown completed")
}
