package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ledgerlift/ledgerlift/internal/classify"
	"github.com/ledgerlift/ledgerlift/internal/cli"
	"github.com/ledgerlift/ledgerlift/internal/engine"
	"github.com/ledgerlift/ledgerlift/internal/importer"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate a legacy chart of accounts",
		Long: `Migrate reads a legacy chart of accounts from a CSV or XLSX export and
resolves every account onto the canonical taxonomy.

By default the run is a preview: nothing is persisted and the full mapping is
printed for inspection. Pass --execute to create the ready accounts.

Examples:
  ledgerlift migrate --org acme --file chart.csv
  ledgerlift migrate --org acme --file chart.xlsx --business-type restaurant
  ledgerlift migrate --org acme --file chart.csv --execute --conflicts rename`,
		RunE: runMigrate,
	}

	cmd.Flags().StringP("file", "f", "", "Legacy chart export (.csv or .xlsx)")
	cmd.Flags().StringP("org", "o", "", "Organization ID to migrate into")
	cmd.Flags().StringP("business-type", "b", "general", "Business type template to match against")
	cmd.Flags().Bool("execute", false, "Persist ready accounts instead of previewing")
	cmd.Flags().String("strategy", "ai_smart", "Mapping strategy (ai_smart, code_based, name_based, custom)")
	cmd.Flags().String("conflicts", "skip", "Conflict policy (skip, merge, rename, fail)")

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("org")

	_ = viper.BindPFlag("migrate.file", cmd.Flags().Lookup("file"))
	_ = viper.BindPFlag("migrate.org", cmd.Flags().Lookup("org"))
	_ = viper.BindPFlag("migrate.business_type", cmd.Flags().Lookup("business-type"))
	_ = viper.BindPFlag("migrate.execute", cmd.Flags().Lookup("execute"))
	_ = viper.BindPFlag("migrate.strategy", cmd.Flags().Lookup("strategy"))
	_ = viper.BindPFlag("migrate.conflicts", cmd.Flags().Lookup("conflicts"))

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	file := viper.GetString("migrate.file")
	org := viper.GetString("migrate.org")
	businessType := viper.GetString("migrate.business_type")
	execute := viper.GetBool("migrate.execute")
	strategy := viper.GetString("migrate.strategy")
	conflicts := viper.GetString("migrate.conflicts")

	accounts, err := importer.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read legacy chart: %w", err)
	}
	slog.Info("Loaded legacy chart", "file", file, "accounts", len(accounts))

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

	reporter := cli.NewReporter(os.Stdout)
	migrationEngine.SetProgress(reporter.Progress)

	mode := engine.ModePreview
	if execute {
		mode = engine.ModeExecute
	}

	result, err := migrationEngine.Migrate(ctx, engine.MigrationRequest{
		OrganizationID:     org,
		BusinessType:       businessType,
		Mode:               mode,
		Strategy:           engine.MappingStrategy(strategy),
		ConflictResolution: engine.ConflictResolution(conflicts),
		Accounts:           accounts,
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	reporter.ShowResult(result)

	if !execute {
		slog.Info("Preview complete. Re-run with --execute to create the ready accounts.")
	}

	return nil
}
