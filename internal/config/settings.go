package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
)

// Settings holds all configuration options.
type Settings struct {
	// Download service
	BaseURL   string `toml:"base_url" env:"PLAYLIST_DL_BASE_URL"`
	UserAgent string `toml:"user_agent" env:"PLAYLIST_DL_USER_AGENT"`

	// Download settings
	Destination            string        `toml:"destination" env:"PLAYLIST_DL_DESTINATION"`
	MaxConcurrentDownloads int           `toml:"max_concurrent_downloads" env:"PLAYLIST_DL_MAX_CONCURRENT_DOWNLOADS"`
	RequestTimeout         time.Duration `toml:"request_timeout" env:"PLAYLIST_DL_REQUEST_TIMEOUT"`
	FetchTimeout           time.Duration `toml:"fetch_timeout" env:"PLAYLIST_DL_FETCH_TIMEOUT"`
	StoreTimeout           time.Duration `toml:"store_timeout" env:"PLAYLIST_DL_STORE_TIMEOUT"`
	DownloadMaxRetries     int           `toml:"download_max_retries" env:"PLAYLIST_DL_MAX_RETRIES"`
	RetryInitialInterval   time.Duration `toml:"retry_initial_interval" env:"PLAYLIST_DL_RETRY_INITIAL_INTERVAL"`
	RetryMaxInterval       time.Duration `toml:"retry_max_interval" env:"PLAYLIST_DL_RETRY_MAX_INTERVAL"`
	VerifyStoredFiles      bool          `toml:"verify_stored_files" env:"PLAYLIST_DL_VERIFY_STORED_FILES"`

	// Tag settings
	ModifyTags bool `toml:"modify_tags" env:"PLAYLIST_DL_MODIFY_TAGS"`

	// Playlist settings
	CreatePlaylist bool   `toml:"create_playlist" env:"PLAYLIST_DL_CREATE_PLAYLIST"`
	PlaylistFormat string `toml:"playlist_format" env:"PLAYLIST_DL_PLAYLIST_FORMAT"` // m3u, pls
	M3UExtended    bool   `toml:"m3u_extended" env:"PLAYLIST_DL_M3U_EXTENDED"`

	// Run history (SQLite); empty disables it
	HistoryPath string `toml:"history_path" env:"PLAYLIST_DL_HISTORY_PATH"`

	LogLevel string `toml:"log_level" env:"PLAYLIST_DL_LOG_LEVEL"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		BaseURL:   "http://some.url.to.dl",
		UserAgent: "PlaylistDownloader",

		Destination:            ".downloads",
		MaxConcurrentDownloads: 4,
		RequestTimeout:         30 * time.Second,
		FetchTimeout:           2 * time.Minute,
		StoreTimeout:           30 * time.Second,
		DownloadMaxRetries:     3,
		RetryInitialInterval:   500 * time.Millisecond,
		RetryMaxInterval:       10 * time.Second,
		VerifyStoredFiles:      false,

		ModifyTags: true,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		LogLevel: "info",
	}
}

// Load reads settings from a TOML file and applies environment overrides.
//
// Values missing from the file keep their defaults; a missing file yields
// the defaults. Environment variables (PLAYLIST_DL_*) win over the file.
// The result is validated; problems are reported together as a *ConfigError.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		if _, err := toml.DecodeFile(path, settings); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(settings); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if errs := settings.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}

	return settings, nil
}

// Save writes settings to a TOML file, creating parent directories.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(s)
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validPlaylistFormats = map[string]bool{
	"m3u": true, "pls": true,
}

// Validate checks the settings for errors.
// Returns a slice of error messages (empty if valid).
func (s *Settings) Validate() []string {
	var errs []string

	if u, err := url.Parse(s.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("base_url: must be an absolute URL, got %q", s.BaseURL))
	}
	if strings.TrimSpace(s.Destination) == "" {
		errs = append(errs, "destination: required")
	}
	if s.MaxConcurrentDownloads < 1 {
		errs = append(errs, fmt.Sprintf("max_concurrent_downloads: must be at least 1, got %d", s.MaxConcurrentDownloads))
	}
	if s.DownloadMaxRetries < 0 {
		errs = append(errs, fmt.Sprintf("download_max_retries: must not be negative, got %d", s.DownloadMaxRetries))
	}
	if s.RequestTimeout <= 0 {
		errs = append(errs, "request_timeout: must be positive")
	}
	if s.FetchTimeout <= 0 {
		errs = append(errs, "fetch_timeout: must be positive")
	}
	if s.StoreTimeout <= 0 {
		errs = append(errs, "store_timeout: must be positive")
	}
	if !validPlaylistFormats[s.PlaylistFormat] {
		errs = append(errs, fmt.Sprintf("playlist_format: must be one of m3u, pls; got %q", s.PlaylistFormat))
	}
	if !validLogLevels[s.LogLevel] {
		errs = append(errs, fmt.Sprintf("log_level: must be one of debug, info, warn, error; got %q", s.LogLevel))
	}

	return errs
}
