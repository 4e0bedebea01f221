package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/headweight/weights/history"
)

var (
	historyDriver string // Ledger backend
	historyDSN    string // Ledger connection string
	historyLimit  int    // Max runs listed
)

// historyCmd groups the ledger inspection subcommands.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the run history ledger",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := openHistory(cmd)
		defer store.Close()
		runs, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		printRuns(cmd.OutOrStdout(), runs)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded run and its weights",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openHistory(cmd)
		defer store.Close()
		run, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		printRun(cmd.OutOrStdout(), run)
	},
}

func openHistory(cmd *cobra.Command) *history.Store {
	store, err := history.Open(cmd.Context(), history.Driver(historyDriver), historyDSN)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	return store
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyDriver, "history-driver", string(history.DriverSQLite), "Ledger backend (sqlite, postgres)")
	historyCmd.PersistentFlags().StringVar(&historyDSN, "history-dsn", "", "Ledger DSN (sqlite default: headweight_history.db)")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs listed (0 for all)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}
