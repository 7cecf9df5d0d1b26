package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/playlist-downloader/internal/io"
	"github.com/handiism/playlist-downloader/internal/manifest"
	"github.com/handiism/playlist-downloader/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for duration/title info.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	// INI-style format with file, title, and length info.
	FormatPLS
)

// ParsePlaylistFormat maps a settings value ("m3u", "pls") to a format.
// Unknown values fall back to FormatM3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	switch strings.ToLower(s) {
	case "pls":
		return FormatPLS
	default:
		return FormatM3U
	}
}

// Extension returns the file extension for the playlist format, including the dot.
func (f PlaylistFormat) Extension() string {
	switch f {
	case FormatPLS:
		return ".pls"
	default:
		return ".m3u"
	}
}

// PlaylistCreator generates playlist files for downloaded playlists.
//
// The playlist lists, in playlist order, the first stored file of every
// song present in the manifest. Songs that were never stored are left out.
// Paths are written as recorded in the manifest, so the playlist file is
// expected at the destination root next to references.json.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(playlist, m)
//	os.WriteFile(PlaylistPath(dest, playlist, FormatM3U), []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:356,Sufjan Stevens - Chicago
//	// Sufjan Stevens/Illinois/Chicago.flac
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// Parameters:
//   - format: The playlist format to generate
//   - extended: For M3U format, whether to include #EXTINF lines
//     (ignored for other formats)
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the creator's playlist format.
func (p *PlaylistCreator) Format() PlaylistFormat {
	return p.format
}

// playlistEntry is one stored song.
type playlistEntry struct {
	song *model.Song
	path string
}

// CreatePlaylist generates playlist content for the stored songs of playlist.
func (p *PlaylistCreator) CreatePlaylist(playlist *model.Playlist, m *manifest.Manifest) string {
	var entries []playlistEntry
	for _, song := range playlist.Songs {
		if paths := m.Paths(song.ISRC); len(paths) > 0 {
			entries = append(entries, playlistEntry{song: song, path: paths[0]})
		}
	}

	switch p.format {
	case FormatPLS:
		return p.createPLS(entries)
	default:
		return p.createM3U(entries)
	}
}

// createM3U generates an M3U playlist.
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#EXTINF:356,Sufjan Stevens - Chicago
//	Sufjan Stevens/Illinois/Chicago.flac
func (p *PlaylistCreator) createM3U(entries []playlistEntry) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, e := range entries {
		if p.extended {
			sb.WriteString(fmt.Sprintf("#EXTINF:%d,%s - %s\n", e.song.Duration, e.song.Artist, e.song.Title))
		}
		sb.WriteString(e.path + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
//	[playlist]
//	File1=Sufjan Stevens/Illinois/Chicago.flac
//	Title1=Sufjan Stevens - Chicago
//	Length1=356
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(entries []playlistEntry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, e := range entries {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, e.path))
		sb.WriteString(fmt.Sprintf("Title%d=%s - %s\n", idx, e.song.Artist, e.song.Title))
		sb.WriteString(fmt.Sprintf("Length%d=%d\n", idx, e.song.Duration))
	}

	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(entries)))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// PlaylistPath returns where the playlist file of playlist is written:
// the sanitized playlist title under destination, or "playlist" when the
// title sanitizes to nothing.
func PlaylistPath(destination string, playlist *model.Playlist, format PlaylistFormat) string {
	name := ioutils.SanitizeFileName(playlist.Summary.Title)
	if name == "" {
		name = "playlist"
	}
	return filepath.Join(destination, name+format.Extension())
}
