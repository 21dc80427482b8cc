// Package app initializes and holds long-lived application services, acting
// as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/leadgrid/harvester/internal/config"
	"github.com/leadgrid/harvester/internal/harvest"
	"github.com/leadgrid/harvester/internal/logging"
	"github.com/leadgrid/harvester/internal/store/api"
	"github.com/leadgrid/harvester/internal/store/sqlite"
)

// App holds the shared, long-lived services for one process: the logger and
// the storage gateway. The backend is chosen exactly once, here; everything
// downstream depends only on the harvest.Store port.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	store  harvest.Store
}

// NewApp builds the service container from an explicit configuration value.
// It fails fast if any critical service cannot be initialized.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var store harvest.Store
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		logger.Info("Using SQLite storage gateway", zap.String("path", cfg.Store.SQLite.Path))
		s, err := sqlite.Open(ctx, cfg.Store.SQLite.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("init sqlite store: %w", err)
		}
		if err := s.Init(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("init sqlite schema: %w", err)
		}
		store = s
	case config.BackendAPI:
		logger.Info("Using remote API storage gateway", zap.String("base_url", cfg.Store.API.BaseURL))
		store = api.New(cfg.Store.API.BaseURL, cfg.Store.API.APITimeout(), logger)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}

	return &App{cfg: cfg, logger: logger, store: store}, nil
}

// Config returns the configuration the App was built with.
func (a *App) Config() config.Config {
	return a.cfg
}

// GetLogger returns the shared zap logger instance.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetStore exposes the configured storage gateway.
func (a *App) GetStore() harvest.Store {
	return a.store
}

// Close releases the gateway and flushes the logger. Safe on every exit
// path, including early aborts.
func (a *App) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Failed to close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}
