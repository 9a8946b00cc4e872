package cmd

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"hotel-management/config"
	"hotel-management/services"
)

// app holds what every subcommand opens first.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	db     *gorm.DB
	hasher *services.PasswordHasher
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	log.Info("configuration loaded", zap.Stringer("config", cfg))

	db, err := config.ConnectDatabase(log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return &app{
		cfg:    cfg,
		log:    log,
		db:     db,
		hasher: services.NewPasswordHasher(cfg.Password.Scheme, cfg.Password.BcryptCost),
	}, nil
}

// migrate creates the schema and the reference rows.
func (a *app) migrate() error {
	if err := config.Migrate(a.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := config.SeedDatabase(a.db, a.hasher.Hash, a.cfg.AdminPassword, a.log); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}
