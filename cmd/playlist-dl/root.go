package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/handiism/playlist-downloader/internal/config"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "playlist-dl",
	Short: "Download the songs of a playlist into a local library",
	Long: `playlist-dl - download the songs of a playlist into a local library

Songs are fetched from a download service and stored as
<destination>/<artist>/<album>/<title>.<ext>. A references.json file in
the destination remembers what was stored, so an interrupted or failed
run can simply be started again.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "playlist-dl %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (TOML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("playlist-dl {{.Version}}\n")
}

// loadSettings loads the config file and environment, then installs the
// process logger.
func loadSettings() (*config.Settings, *slog.Logger, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger(settings.LogLevel, verbose)
	slog.SetDefault(logger)

	return settings, logger, nil
}

func newLogger(level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
