package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pinledger/internal/cli"
	"pinledger/internal/core"
	"pinledger/internal/services"
)

var flagCurrency string

var expenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Add, list and remove expenses",
}

var expenseAddCmd = &cobra.Command{
	Use:   "add AMOUNT DESCRIPTION...",
	Short: "Record an expense",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runExpenseAdd,
}

var expenseListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List expenses with the running total",
	Args:    cobra.NoArgs,
	RunE:    runExpenseList,
}

var expenseRmCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Delete an expense by id",
	Args:    cobra.ExactArgs(1),
	RunE:    runExpenseRm,
}

func init() {
	expenseCmd.PersistentFlags().StringVar(&flagCurrency, "currency", "", "Currency symbol for display ($ or ₺)")
	expenseCmd.AddCommand(expenseAddCmd, expenseListCmd, expenseRmCmd)
	rootCmd.AddCommand(expenseCmd)
}

// openLedger opens the store and wraps it in a ledger service. The returned
// close func releases the store handle.
func openLedger() (*services.LedgerService, string, func(), error) {
	cfg, logger, err := loadConfig(os.Stderr)
	if err != nil {
		return nil, "", nil, err
	}
	repo, err := cli.InitBackend(logger, cfg)
	if err != nil {
		return nil, "", nil, err
	}

	currency := cfg.DefaultCurrency
	if flagCurrency != "" {
		currency = flagCurrency
	}
	prefs := core.Preferences{Currency: currency, Language: cfg.DefaultLanguage}
	if err := prefs.Validate(); err != nil {
		repo.Close()
		return nil, "", nil, err
	}

	return services.NewLedgerService(repo, 0).WithLogger(logger), currency, func() { repo.Close() }, nil
}

func runExpenseAdd(cmd *cobra.Command, args []string) error {
	ledger, currency, done, err := openLedger()
	if err != nil {
		return err
	}
	defer done()

	e, err := ledger.Submit(cmd.Context(), args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "#%d %s\n", e.ID, core.FormatExpense(e, currency))
	return nil
}

func runExpenseList(cmd *cobra.Command, _ []string) error {
	ledger, currency, done, err := openLedger()
	if err != nil {
		return err
	}
	defer done()

	snap, err := ledger.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	printSnapshot(cmd.OutOrStdout(), snap, currency)
	return nil
}

func printSnapshot(out io.Writer, snap core.Snapshot, currency string) {
	if len(snap.Expenses) == 0 {
		fmt.Fprintln(out, "No expenses recorded.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range snap.Expenses {
		fmt.Fprintf(tw, "%d\t%s\n", e.ID, core.FormatExpense(e, currency))
	}
	fmt.Fprintf(tw, "\tTotal: %s\n", core.FormatAmount(snap.Total, currency))
	tw.Flush()
}

func runExpenseRm(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid expense id %q", args[0])
	}

	ledger, currency, done, err := openLedger()
	if err != nil {
		return err
	}
	defer done()

	if err := ledger.Delete(cmd.Context(), id); err != nil {
		return err
	}
	snap, err := ledger.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d. Total: %s\n", id, core.FormatAmount(snap.Total, currency))
	return nil
}
