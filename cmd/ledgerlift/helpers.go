package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/ledgerlift/ledgerlift/internal/config"
	"github.com/ledgerlift/ledgerlift/internal/match"
	"github.com/ledgerlift/ledgerlift/internal/oracle"
	"github.com/ledgerlift/ledgerlift/internal/service"
	"github.com/ledgerlift/ledgerlift/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/ledgerlift/ledgerlift.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// createOracle builds the semantic oracle from configuration. It returns nil
// when no provider is configured; the matching cascade then stops after the
// lexical strategies.
func createOracle() (match.Oracle, error) {
	provider := viper.GetString("oracle.provider")
	if provider == "" {
		slog.Info("No oracle provider configured, semantic matching disabled")
		return nil, nil
	}

	apiKey := viper.GetString("oracle.api_key")
	if apiKey == "" {
		return nil, fmt.Errorf("oracle.api_key is required when oracle.provider is set")
	}

	cfg := oracle.Config{
		Provider:   provider,
		APIKey:     apiKey,
		Model:      viper.GetString("oracle.model"),
		MaxRetries: viper.GetInt("oracle.max_retries"),
		Timeout:    viper.GetDuration("oracle.timeout"),
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	adapter, err := oracle.NewAdapter(cfg, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle: %w", err)
	}
	return adapter, nil
}
