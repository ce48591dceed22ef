package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pinledger/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig(os.Stderr)
		if err != nil {
			return err
		}
		if cfg.DataBackend != "sqlite" {
			return fmt.Errorf("migrate needs the sqlite backend, got %q", cfg.DataBackend)
		}
		if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
			logger.Op(cmd.Context(), "migrate", err, "path", cfg.SQLiteDBPath)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied to %s\n", cfg.SQLiteDBPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
