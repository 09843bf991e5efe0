package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ledgerlift/ledgerlift/internal/importer"
)

func templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage business-type templates",
	}

	cmd.AddCommand(templatesImportCmd())
	cmd.AddCommand(templatesListCmd())

	return cmd
}

func templatesImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <business-type> <file.json>",
		Short: "Import a canonical template for a business type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			businessType, file := args[0], args[1]

			accounts, err := importer.ReadTemplateFile(file)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("Failed to close database", "error", closeErr)
				}
			}()

			if err := store.SaveTemplateAccounts(ctx, businessType, accounts); err != nil {
				return fmt.Errorf("failed to save template: %w", err)
			}

			slog.Info("Template imported",
				"business_type", businessType,
				"accounts", len(accounts))
			return nil
		},
	}
	return cmd
}

func templatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List business types with templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			types, err := store.ListTemplateTypes(ctx)
			if err != nil {
				return fmt.Errorf("failed to list templates: %w", err)
			}

			if len(types) == 0 {
				fmt.Println("No templates imported yet.")
				return nil
			}
			for _, t := range types {
				fmt.Println(t)
			}
			return nil
		},
	}
}
