package audio

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/handiism/playlist-downloader/internal/manifest"
	"github.com/handiism/playlist-downloader/internal/model"
)

func createTestPlaylist() (*model.Playlist, *manifest.Manifest) {
	playlist := &model.Playlist{
		Summary: model.Summary{Title: "Late Night: Vol. 1", SongCount: 3, Duration: 900},
		Songs: []*model.Song{
			{Title: "Chicago", Artist: "Sufjan Stevens", Album: "Illinois", Duration: 356, ISRC: "A1"},
			{Title: "Missing", Artist: "Nobody", Album: "Nowhere", Duration: 300, ISRC: "Z9"},
			{Title: "Midnight City", Artist: "M83", Album: "Hurry Up, We're Dreaming", Duration: 244, ISRC: "B2"},
		},
	}
	m := manifest.FromEntries(map[string][]string{
		"A1": {"Sufjan Stevens/Illinois/Chicago.flac", "Sufjan Stevens/Illinois/Chicago.mp3"},
		"B2": {"M83/Hurry Up Were Dreaming/Midnight City.flac"},
	})
	return playlist, m
}

func TestPlaylistCreator_M3U(t *testing.T) {
	playlist, m := createTestPlaylist()
	content := NewPlaylistCreator(FormatM3U, false).CreatePlaylist(playlist, m)

	want := "Sufjan Stevens/Illinois/Chicago.flac\nM83/Hurry Up Were Dreaming/Midnight City.flac\n"
	assert.Equal(t, want, content)
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	playlist, m := createTestPlaylist()
	content := NewPlaylistCreator(FormatM3U, true).CreatePlaylist(playlist, m)

	assert.True(t, strings.HasPrefix(content, "#EXTM3U\n"))
	assert.Contains(t, content, "#EXTINF:356,Sufjan Stevens - Chicago\n")
	assert.Contains(t, content, "#EXTINF:244,M83 - Midnight City\n")
	assert.NotContains(t, content, "Nobody")
}

func TestPlaylistCreator_PLS(t *testing.T) {
	playlist, m := createTestPlaylist()
	content := NewPlaylistCreator(FormatPLS, false).CreatePlaylist(playlist, m)

	assert.True(t, strings.HasPrefix(content, "[playlist]\n"))
	assert.Contains(t, content, "File1=Sufjan Stevens/Illinois/Chicago.flac\n")
	assert.Contains(t, content, "File2=M83/Hurry Up Were Dreaming/Midnight City.flac\n")
	assert.Contains(t, content, "Length2=244\n")
	assert.Contains(t, content, "NumberOfEntries=2\n")
	assert.Contains(t, content, "Version=2\n")
}

func TestPlaylistCreator_NothingStored(t *testing.T) {
	playlist, _ := createTestPlaylist()
	content := NewPlaylistCreator(FormatM3U, true).CreatePlaylist(playlist, manifest.New())

	assert.Equal(t, "#EXTM3U\n", content)
}

func TestParsePlaylistFormat(t *testing.T) {
	assert.Equal(t, FormatPLS, ParsePlaylistFormat("PLS"))
	assert.Equal(t, FormatM3U, ParsePlaylistFormat("m3u"))
	assert.Equal(t, FormatM3U, ParsePlaylistFormat("unknown"))
	assert.Equal(t, ".pls", FormatPLS.Extension())
	assert.Equal(t, ".m3u", FormatM3U.Extension())
}

func TestPlaylistPath(t *testing.T) {
	playlist, _ := createTestPlaylist()

	assert.Equal(t, filepath.Join("/music", "Late Night Vol 1.m3u"), PlaylistPath("/music", playlist, FormatM3U))

	untitled := &model.Playlist{Summary: model.Summary{Title: "???"}}
	assert.Equal(t, filepath.Join("/music", "playlist.pls"), PlaylistPath("/music", untitled, FormatPLS))
}
