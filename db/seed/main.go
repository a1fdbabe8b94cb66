package main

import (
	"time"

	"github.com/onurcolak/sms-scheduler/environments"
	"github.com/onurcolak/sms-scheduler/pkg/database"
	"github.com/onurcolak/sms-scheduler/pkg/logger"
)

func main() {
	cfg := environments.Load()
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger.Errorf("Failed to close database: %v", err)
		}
	}()

	if err := database.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	if err := database.SeedTestData(db, time.Now()); err != nil {
		logger.Fatalf("Failed to seed test data: %v", err)
	}

	logger.Infof("Seed completed successfully")
}
