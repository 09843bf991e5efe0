package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ledgerlift/ledgerlift/internal/classify"
	"github.com/ledgerlift/ledgerlift/internal/engine"
	"github.com/ledgerlift/ledgerlift/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the migration HTTP API",
		Long: `Serve exposes the migration engine over HTTP.

POST /api/v1/migrations accepts a batch of legacy accounts and returns the
resolved mapping; preview and execute modes are selected per request.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "Listen address")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	oracleClient, err := createOracle()
	if err != nil {
		return err
	}

	migrationEngine := engine.New(store, classify.New(), oracleClient)

	srv := server.New(viper.GetString("server.addr"), migrationEngine, store, slog.Default())
	return srv.Start(ctx)
}
