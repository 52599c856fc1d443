package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/shopaudit/internal/config"
	"github.com/nao1215/shopaudit/internal/database"
)

// addStoreFlags registers the storage backend flags shared by commands
// that read or write saved audits.
func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("store", config.DefaultStore,
		"Storage backend: sqlite, memory or redis")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the SQLite database")
	cmd.Flags().String("redis-url", "",
		"Redis URL for the redis store (redis://host:6379/0)")
}

// storeOptions reads the storage flags into cfg.
func storeOptions(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.Store, err = cmd.Flags().GetString("store"); err != nil {
		return err
	}
	if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return err
	}
	if cfg.RedisURL, err = cmd.Flags().GetString("redis-url"); err != nil {
		return err
	}
	return nil
}

// openStore opens the backend selected in cfg.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (database.Store, error) {
	switch cfg.Store {
	case "memory":
		return database.NewMemoryStore(), nil
	case "redis":
		if cfg.RedisURL == "" {
			return nil, config.ErrMissingRedisURL
		}
		store, err := database.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.Debug("redis store opened")
		return store, nil
	case "sqlite", "":
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		logger.Debug("database opened", "path", db.Path())
		return db, nil
	default:
		return nil, config.ErrUnknownStore
	}
}

// openStoreFromFlags reads the storage flags and opens the backend.
func openStoreFromFlags(ctx context.Context, cmd *cobra.Command, logger *slog.Logger) (database.Store, error) {
	cfg := config.NewConfig()
	if err := storeOptions(cmd, cfg); err != nil {
		return nil, err
	}
	return openStore(ctx, cfg, logger)
}
