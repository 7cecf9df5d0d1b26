// Package config provides configuration management for the playlist downloader.
//
// This package handles:
//   - Loading and saving settings from TOML files
//   - Environment variable overrides (PLAYLIST_DL_*)
//   - Default configuration values and validation
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads to ./.downloads
//	// 4 concurrent downloads, 3 retries
//	// ID3 tagging enabled
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.toml")
//	if err != nil {
//	    // *ConfigError lists every invalid setting
//	}
//
// A missing file is not an error: the defaults are used, and environment
// variables still apply:
//
//	PLAYLIST_DL_BASE_URL=http://dl.example playlist-dl download run -p playlist.json
//
// # Saving Settings
//
//	settings.Destination = "/music/playlists"
//	err := settings.Save("/path/to/config.toml")
package config
