package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/handiism/playlist-downloader/internal/audio"
	"github.com/handiism/playlist-downloader/internal/config"
	"github.com/handiism/playlist-downloader/internal/download"
	"github.com/handiism/playlist-downloader/internal/history"
	ioutils "github.com/handiism/playlist-downloader/internal/io"
	"github.com/handiism/playlist-downloader/internal/manifest"
	"github.com/handiism/playlist-downloader/internal/model"
	"github.com/handiism/playlist-downloader/internal/playlist"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download playlists",
}

var downloadRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Launch the download",
	Long: `Launch the download.

Songs already listed in <destination>/references.json are skipped. Songs
that fail are reported and counted; the others are still downloaded.

Examples:
  playlist-dl download run -p playlist.json
  playlist-dl download run -p playlist.json -d ~/Music -u http://dl.example
  playlist-dl download run -p playlist.json --workers 8 --write-playlist`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

var downloadDryRunCmd = &cobra.Command{
	Use:   "dry-run",
	Short: "Display information about how the actual run would go",
	Args:  cobra.NoArgs,
	RunE:  runDryRun,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadRunCmd.Flags().StringP("playlist", "p", "", "The path to the playlist JSON")
	downloadRunCmd.Flags().StringP("destination", "d", "", "Directory to put the content (overrides config)")
	downloadRunCmd.Flags().StringP("base-url", "u", "", "Download service base URL (overrides config)")
	downloadRunCmd.Flags().Int("workers", 0, "Number of concurrent downloads (overrides config)")
	downloadRunCmd.Flags().Bool("verify", false, "Re-download songs whose recorded files are missing")
	downloadRunCmd.Flags().Bool("write-playlist", false, "Write a playlist file next to references.json")
	downloadRunCmd.Flags().String("history", "", "SQLite file to record the run in (overrides config)")
	_ = downloadRunCmd.MarkFlagRequired("playlist")
	downloadCmd.AddCommand(downloadRunCmd)

	downloadDryRunCmd.Flags().StringP("playlist", "p", "", "The path to the playlist JSON")
	downloadDryRunCmd.Flags().StringP("destination", "d", "", "Directory a run would use (overrides config)")
	_ = downloadDryRunCmd.MarkFlagRequired("playlist")
	downloadCmd.AddCommand(downloadDryRunCmd)
}

// applyRunFlags copies the flags that were set onto settings.
func applyRunFlags(cmd *cobra.Command, settings *config.Settings) error {
	flags := cmd.Flags()

	if flags.Changed("destination") {
		settings.Destination, _ = flags.GetString("destination")
	}
	if flags.Changed("base-url") {
		settings.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("workers") {
		settings.MaxConcurrentDownloads, _ = flags.GetInt("workers")
	}
	if flags.Changed("verify") {
		settings.VerifyStoredFiles, _ = flags.GetBool("verify")
	}
	if flags.Changed("write-playlist") {
		settings.CreatePlaylist, _ = flags.GetBool("write-playlist")
	}
	if flags.Changed("history") {
		settings.HistoryPath, _ = flags.GetString("history")
	}

	if errs := settings.Validate(); len(errs) > 0 {
		return &config.ConfigError{Path: configPath, Errors: errs}
	}
	return nil
}

func runDownload(cmd *cobra.Command, _ []string) error {
	settings, logger, err := loadSettings()
	if err != nil {
		return err
	}
	if err := applyRunFlags(cmd, settings); err != nil {
		return err
	}

	playlistPath, _ := cmd.Flags().GetString("playlist")
	pl, err := playlist.Load(playlistPath)
	if err != nil {
		return err
	}

	destination := settings.Destination
	if err := ioutils.EnsureDir(destination); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	store := manifest.NewStore(destination)
	mf, err := store.Load()
	if err != nil {
		return err
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted, finishing songs in progress...")
			cancel()
		case <-ctx.Done():
		}
	}()

	out := cmd.OutOrStdout()
	printer := newEventPrinter(out, cmd.ErrOrStderr(), verbose)
	recorder := &outcomeRecorder{}

	manager := download.NewManager(settings, func(event download.ProgressEvent) {
		printer.Print(event)
		recorder.Add(event)
	}, download.WithManifestStore(store), download.WithLogger(logger))

	fmt.Fprintln(out, titleStyle.Render("🎵 "+pl.Summary.Title))
	fmt.Fprintln(out, dimStyle.Render(separator))
	fmt.Fprintln(out)

	started := time.Now()
	report, runErr := manager.Run(ctx, destination, mf, pl.Songs)

	fmt.Fprintln(out)
	fmt.Fprintln(out, dimStyle.Render(separator))
	fmt.Fprintln(out, formatReport(report))

	if runErr == nil && settings.CreatePlaylist {
		if path, err := writePlaylistFile(settings, destination, pl, mf); err != nil {
			printer.Print(download.ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: download.LevelWarning})
		} else {
			printer.Print(download.ProgressEvent{Message: fmt.Sprintf("Created playlist %s", path), Level: download.LevelSuccess})
		}
	}

	if settings.HistoryPath != "" {
		if err := recordHistory(settings.HistoryPath, logger, pl, destination, report, runErr, recorder.Events(), started); err != nil {
			printer.Print(download.ProgressEvent{Message: fmt.Sprintf("Error recording history: %v", err), Level: download.LevelWarning})
		}
	}

	if runErr != nil {
		return &exitError{code: 1, err: runErr}
	}
	if ctx.Err() != nil {
		fmt.Fprintln(out, warningStyle.Render("Download cancelled."))
		return &exitError{code: 130}
	}
	return nil
}

func writePlaylistFile(settings *config.Settings, destination string, pl *model.Playlist, mf *manifest.Manifest) (string, error) {
	format := audio.ParsePlaylistFormat(settings.PlaylistFormat)
	creator := audio.NewPlaylistCreator(format, settings.M3UExtended)
	path := audio.PlaylistPath(destination, pl, format)

	content := creator.CreatePlaylist(pl, mf)
	if err := ioutils.WriteFileAtomic(context.Background(), path, []byte(content), nil); err != nil {
		return "", err
	}
	return path, nil
}

func recordHistory(path string, logger *slog.Logger, pl *model.Playlist, destination string,
	report *download.Report, runErr error, events []*history.SongEvent, started time.Time) error {
	store, err := history.Open(path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	run := &history.Run{
		ID:          report.RunID,
		Playlist:    pl.Summary.Title,
		Destination: destination,
		Total:       report.Total,
		Stored:      report.Stored,
		Skipped:     report.Skipped,
		FetchFailed: report.FetchFailed,
		StoreFailed: report.StoreFailed,
		Cancelled:   report.Cancelled,
		Bytes:       report.Bytes,
		StartedAt:   started,
		FinishedAt:  started.Add(report.Elapsed),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	logger.Debug("recording run", "path", path, "run_id", run.ID)
	return store.Record(context.Background(), run, events)
}

func runDryRun(cmd *cobra.Command, _ []string) error {
	settings, _, err := loadSettings()
	if err != nil {
		return err
	}
	if err := applyRunFlags(cmd, settings); err != nil {
		return err
	}

	playlistPath, _ := cmd.Flags().GetString("playlist")
	pl, err := playlist.Load(playlistPath)
	if err != nil {
		return err
	}

	// Only show the Stored column when the destination has a manifest.
	var stored func(*model.Song) bool
	manifestPath := filepath.Join(settings.Destination, manifest.FileName)
	if _, err := os.Stat(manifestPath); err == nil {
		mf, err := manifest.Load(manifestPath)
		if err != nil {
			return err
		}
		stored = func(s *model.Song) bool {
			return download.IsStored(settings, settings.Destination, mf, s)
		}
	}

	renderDryRun(cmd.OutOrStdout(), pl, stored)
	return nil
}
