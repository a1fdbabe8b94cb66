package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/sms-scheduler/environments"
	"github.com/onurcolak/sms-scheduler/internal/domain"
	"github.com/onurcolak/sms-scheduler/internal/events"
	"github.com/onurcolak/sms-scheduler/internal/repository"
	"github.com/onurcolak/sms-scheduler/internal/scheduler"
	"github.com/onurcolak/sms-scheduler/internal/service"
	"github.com/onurcolak/sms-scheduler/pkg/alert"
	"github.com/onurcolak/sms-scheduler/pkg/database"
	"github.com/onurcolak/sms-scheduler/pkg/logger"
	"github.com/onurcolak/sms-scheduler/pkg/redis"
	"github.com/onurcolak/sms-scheduler/pkg/sms"
)

// App holds the wired components shared by the API server and the CLI.
type App struct {
	Config    *environments.Config
	DB        *sqlx.DB
	Repo      *repository.ScheduledMessageRepository
	History   *repository.HistoryRepository
	Cache     *redis.Client // nil when Valkey is disabled or unreachable
	SMS       *sms.Manager
	Delivery  *service.DeliveryService
	Bus       *events.Bus
	Scheduler *scheduler.Scheduler
}

type Options struct {
	// Seed inserts sample messages into an empty table.
	Seed bool
}

func New(cfg *environments.Config, opts Options) (*App, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := database.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if opts.Seed {
		if err := database.SeedTestData(db, time.Now()); err != nil {
			logger.Warnf("Failed to seed test data: %v", err)
		}
	}

	app := &App{
		Config:  cfg,
		DB:      db,
		Repo:    repository.NewScheduledMessageRepository(db),
		History: repository.NewHistoryRepository(db),
		SMS:     sms.NewManagerFromConfig(cfg.SMS),
		Bus:     events.NewBus(),
	}

	if cfg.Redis.Enabled {
		client, err := redis.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Warnf("Valkey not available, sent-message cache disabled: %v", err)
		} else {
			app.Cache = client
		}
	}

	if names := app.SMS.Names(); len(names) == 0 {
		logger.Warnf("No SMS provider configured; due messages will be marked failed")
	} else {
		logger.Infof("SMS providers: %v (default: %s)", names, app.SMS.DefaultName())
	}

	// A nil *redis.Client must not reach the service as a non-nil interface.
	if app.Cache != nil {
		app.Delivery = service.NewDeliveryService(app.SMS, app.Cache, app.History, cfg.SMS)
	} else {
		app.Delivery = service.NewDeliveryService(app.SMS, nil, app.History, cfg.SMS)
	}

	registerEventLogging(app.Bus)

	var schedOpts []scheduler.Option
	if cfg.Alert.WebhookURL != "" && cfg.Alert.IterationCount > 0 {
		alertClient := alert.NewClient(cfg.Alert.WebhookURL, cfg.SMS.Timeout)
		schedOpts = append(schedOpts, scheduler.WithAlerter(alertClient, cfg.Alert.IterationCount))
		logger.Infof("Alerting to %s after %d all-failed cycles", alertClient.GetURL(), cfg.Alert.IterationCount)
	}

	app.Scheduler = scheduler.New(app.Repo, app.Delivery, app.Bus, cfg.Scheduler, schedOpts...)

	return app, nil
}

// CachePinger returns the cache as a health-check target, or nil when disabled.
func (a *App) CachePinger() interface{ Ping(ctx context.Context) error } {
	if a.Cache == nil {
		return nil
	}
	return a.Cache
}

// Close stops the scheduler and releases connections.
func (a *App) Close() {
	if a.Scheduler != nil && a.Scheduler.IsRunning() {
		if err := a.Scheduler.Stop(); err != nil {
			logger.Errorf("Error stopping scheduler: %v", err)
		}
	}

	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			logger.Errorf("Error closing Valkey: %v", err)
		}
	}

	if err := a.DB.Close(); err != nil {
		logger.Errorf("Error closing database: %v", err)
	}
}

func registerEventLogging(bus *events.Bus) {
	for _, eventType := range domain.AllEventTypes {
		bus.Register(eventType, func(ctx context.Context, e domain.Event) error {
			entry := logger.WithFields(map[string]any{
				"event": string(e.Type),
				"id":    e.ID,
			})
			if e.NextSchedule != "" {
				entry = entry.WithField("next_schedule", e.NextSchedule)
			}
			if e.Error != "" {
				entry.WithField("error", e.Error).Warn("scheduler event")
				return nil
			}
			entry.Debug("scheduler event")
			return nil
		})
	}
}
