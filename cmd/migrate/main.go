package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"quickgpt/internal/bootstrap"
	"quickgpt/internal/config"
	"quickgpt/internal/logging"
)

// Creates or updates the schema for the configured storage driver.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config failed")
	}
	logging.Setup(cfg.App.Env)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := bootstrap.OpenDatabase(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("open database failed")
	}
	if err := bootstrap.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("migrate failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logrus.WithField("driver", cfg.Storage.Driver).Info("migration complete")
}
