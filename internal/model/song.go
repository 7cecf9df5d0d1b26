package model

import (
	ioutils "github.com/handiism/playlist-downloader/internal/io"
)

// Song represents one entry of a playlist.
//
// Song carries the metadata needed to address the song in the remote
// catalog and to place its content on disk:
//   - Artist and Title address the remote catalog (used verbatim)
//   - Artist, Album and Title, sanitized, name the local file
//   - ISRC identifies the recording and keys the manifest
//
// Example:
//
//	song := &Song{
//	    Title:    "Chicago",
//	    Artist:   "Sufjan Stevens",
//	    Album:    "Illinois",
//	    Duration: 356,
//	    ISRC:     "USAK10500118",
//	}
type Song struct {
	// Title is the song title as published.
	Title string

	// Artist is the performing artist name.
	Artist string

	// Album is the album the song appears on.
	Album string

	// Duration is the song length in seconds.
	Duration int

	// ISRC is the International Standard Recording Code of the song.
	// It is the dedup key of the manifest.
	ISRC string
}

// TitleFileName returns the title reduced to a filesystem-safe segment.
func (s *Song) TitleFileName() string {
	return ioutils.SanitizeFileName(s.Title)
}

// ArtistFileName returns the artist reduced to a filesystem-safe segment.
func (s *Song) ArtistFileName() string {
	return ioutils.SanitizeFileName(s.Artist)
}

// AlbumFileName returns the album reduced to a filesystem-safe segment.
func (s *Song) AlbumFileName() string {
	return ioutils.SanitizeFileName(s.Album)
}

// Summary describes a playlist as a whole.
type Summary struct {
	Title     string
	SongCount int
	Duration  int // total, in seconds
}

// Playlist is a titled, ordered list of songs.
//
// A Playlist is built once by the loader and only read afterwards.
type Playlist struct {
	Summary Summary
	Songs   []*Song
}

// TotalDuration returns the sum of the song durations in seconds.
func (p *Playlist) TotalDuration() int {
	total := 0
	for _, song := range p.Songs {
		total += song.Duration
	}
	return total
}

// ISRCs returns the ISRC of every song, in playlist order.
func (p *Playlist) ISRCs() []string {
	isrcs := make([]string, len(p.Songs))
	for i, song := range p.Songs {
		isrcs[i] = song.ISRC
	}
	return isrcs
}
