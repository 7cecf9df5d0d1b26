package model

import (
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/playlist-downloader/internal/io"
)

// Fallback names for path segments that sanitize to nothing.
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

// CatalogLocator builds remote catalog addresses of the form
//
//	<base>/artist/<artist>/song/<title>
//
// Artist and title are used as given: they address a remote catalog,
// not a filesystem, so they are neither sanitized nor escaped here.
type CatalogLocator struct{}

// Locate returns the catalog address of song under baseURL.
//
// Example:
//
//	CatalogLocator{}.Locate("http://dl.example", song)
//	// "http://dl.example/artist/Sufjan Stevens/song/Chicago"
func (CatalogLocator) Locate(baseURL string, song *Song) string {
	return strings.TrimRight(baseURL, "/") + "/artist/" + song.Artist + "/song/" + song.Title
}

// LibraryLayout places stored content at
//
//	<root>/<artist>/<album>/<title>.<tag>
//
// where every segment is sanitized with ioutils.SanitizeFileName.
// An artist or album that sanitizes to nothing is replaced by UnknownArtist
// or UnknownAlbum; a title that sanitizes to nothing is replaced by the ISRC
// so distinct songs never share a file.
type LibraryLayout struct{}

// Path computes the storage path for song and creates its parent
// directories. Calling it again for the same song is harmless.
//
// Example:
//
//	path, err := LibraryLayout{}.Path("/music", "flac", song)
//	// "/music/Sufjan Stevens/Illinois/Chicago.flac"
func (LibraryLayout) Path(root, tag string, song *Song) (string, error) {
	path := StoragePath(root, tag, song)

	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return "", err
	}

	return path, nil
}

// StoragePath computes the same path as LibraryLayout.Path without touching
// the filesystem.
func StoragePath(root, tag string, song *Song) string {
	artist := orDefault(song.ArtistFileName(), UnknownArtist)
	album := orDefault(song.AlbumFileName(), UnknownAlbum)
	title := orDefault(song.TitleFileName(), orDefault(ioutils.SanitizeFileName(song.ISRC), "untitled"))

	return filepath.Join(root, artist, album, title+"."+tag)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
