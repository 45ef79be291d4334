package main

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/joestump/village-forge/internal/config"
	"github.com/joestump/village-forge/internal/db"
	"github.com/joestump/village-forge/internal/logging"
)

// loadEnv reads config and builds the logger shared by every command.
func loadEnv() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openDB connects to the configured database and applies pending migrations.
func openDB(cfg *config.Config) (*sqlx.DB, error) {
	database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database, cfg.DB.Driver); err != nil {
		_ = database.Close()
		return nil, err
	}
	return database, nil
}
