package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/playlist-downloader/internal/history"
)

var downloadHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs",
	Long: `Show recorded runs, most recent first.

Runs are only recorded when history_path is set in the config file or
--history is passed to 'download run'.

Examples:
  playlist-dl download history --history runs.db
  playlist-dl download history --history runs.db --limit 5
  playlist-dl download history --history runs.db --run 3f2a9c1e-...`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	downloadHistoryCmd.Flags().String("history", "", "SQLite history file (overrides config)")
	downloadHistoryCmd.Flags().IntP("limit", "n", 10, "Number of runs to show (0 for all)")
	downloadHistoryCmd.Flags().String("run", "", "Show the song outcomes of one run")
	downloadCmd.AddCommand(downloadHistoryCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	settings, logger, err := loadSettings()
	if err != nil {
		return err
	}

	path := settings.HistoryPath
	if cmd.Flags().Changed("history") {
		path, _ = cmd.Flags().GetString("history")
	}
	if path == "" {
		return errors.New("no history file: set history_path or pass --history")
	}

	store, err := history.Open(path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	if runID, _ := cmd.Flags().GetString("run"); runID != "" {
		events, err := store.SongEvents(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return fmt.Errorf("no songs recorded for run %s", runID)
		}
		for _, e := range events {
			line := fmt.Sprintf("%-12s %s - %s", e.Outcome, e.Artist, e.Title)
			if e.Error != "" {
				line += ": " + e.Error
			}
			fmt.Fprintln(out, line)
		}
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	renderRuns(out, runs)
	return nil
}
