package main

import (
	"context"
	"fmt"

	"github.com/jonathan/vendor-outreach/internal/db"
	"github.com/spf13/cobra"
)

var migrateConfigPath string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadRuntimeConfig(migrateConfigPath)
	if err != nil {
		return err
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	fmt.Println("Schema is up to date")
	return nil
}
