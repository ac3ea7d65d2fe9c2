// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfebc-cli/internal/history"
	"github.com/pdiddy/pdfebc-cli/internal/settings"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded compression runs",
	Long: `History lists the compression runs recorded in the local database,
newest first: when each ran, what it processed, how much space it saved,
and whether the products were e-mailed or cleaned up.

Use --run with a run ID (or unique prefix) to see the per-file rows of a
single run.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 0, "maximum runs listed (0 = use history.max_results)")
	historyCmd.Flags().String("run", "", "show one run's per-file rows (run ID or unique prefix)")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := settings.FromViper(viper.GetViper())

	path, err := settings.HistoryDatabasePath(cfg.History)
	if err != nil {
		return err
	}
	store, err := history.Open(path, cfg.History.MaxResults)
	if err != nil {
		return err
	}
	defer store.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")

	if runID, _ := cmd.Flags().GetString("run"); runID != "" {
		summary, files, err := store.RunFiles(context.Background(), runID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return history.FormatJSON(struct {
				Run   history.RunSummary   `json:"run"`
				Files []history.FileRecord `json:"files"`
			}{summary, files}, os.Stdout)
		}
		history.FormatFiles(summary, files, os.Stdout)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(context.Background(), limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return history.FormatJSON(runs, os.Stdout)
	}
	history.FormatTable(runs, os.Stdout)
	return nil
}
