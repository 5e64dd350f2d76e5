package main

import (
	"database/sql"

	"go.uber.org/zap"

	"akili/pkg/database"
	"akili/pkg/utils"
)

// env is what every subcommand needs: settings, a logger and an open store.
type env struct {
	cfg    utils.Config
	logger *zap.Logger
	db     *sql.DB
}

func openEnv() (*env, error) {
	cfg, err := utils.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := utils.NewLogger(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	dbCfg := database.DefaultConfig()
	if cfg.Database.Path != "" {
		dbCfg.Path = cfg.Database.Path
	}
	db, err := database.OpenAndMigrate(dbCfg)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func (e *env) Close() {
	_ = e.db.Close()
	_ = e.logger.Sync()
}
