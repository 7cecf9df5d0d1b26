// Package audio provides audio file services for stored songs:
// ID3 tag writing and playlist generation.
//
// # ID3 Tagging
//
// Use the Tagger to write ID3 tags to MP3 files:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.Tag("/music/M83/Hurry Up Were Dreaming/Midnight City.mp3", song)
//
// The tagger supports:
//   - Title, Artist, Album
//   - Length (milliseconds)
//   - ISRC
//
// # Playlist Generation
//
// Generate a playlist of the songs recorded in a manifest:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(playlist, m)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
package audio
