package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pinledger/internal/cli"
	"pinledger/internal/config"
	"pinledger/internal/log"
)

var (
	flagDBPath  string
	flagBackend string
)

var rootCmd = &cobra.Command{
	Use:           "pinledger",
	Short:         "Expense ledger with proximity alerts",
	Long:          "Record expenses, keep a running total and get notified near known places.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path (overrides SQLITE_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Expense store, sqlite or memory (overrides DATA_BACKEND)")
}

// loadConfig reads .env and the environment, applies flag overrides and
// builds the logger. Log output goes to logOut.
func loadConfig(logOut io.Writer) (*config.Config, *log.Logger, error) {
	cli.LoadEnvFile()
	if flagDBPath != "" {
		os.Setenv("SQLITE_DB_PATH", flagDBPath)
	}
	if flagBackend != "" {
		os.Setenv("DATA_BACKEND", flagBackend)
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, cli.SetupLogger(log.ComponentApp, cfg.LogLevel, logOut), nil
}
