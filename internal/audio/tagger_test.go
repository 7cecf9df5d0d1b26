package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/playlist-downloader/internal/model"
)

// mpegFrames is a stand-in for MP3 audio data without an ID3 tag.
var mpegFrames = append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 413)...)

func TestTagger_Supports(t *testing.T) {
	tagger := NewTagger(nil)

	assert.True(t, tagger.Supports("mp3"))
	assert.True(t, tagger.Supports("MP3"))
	assert.False(t, tagger.Supports("flac"))
}

func TestTagger_Tag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	require.NoError(t, os.WriteFile(path, mpegFrames, 0644))

	song := &model.Song{Title: "Chicago", Artist: "Sufjan Stevens", Album: "Illinois", Duration: 356, ISRC: "USAK10500118"}
	require.NoError(t, NewTagger(nil).Tag(path, song))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Equal(t, "Chicago", tag.Title())
	assert.Equal(t, "Sufjan Stevens", tag.Artist())
	assert.Equal(t, "Illinois", tag.Album())
	assert.Equal(t, "USAK10500118", tag.GetTextFrame("TSRC").Text)
	assert.Equal(t, "356000", tag.GetTextFrame("TLEN").Text)
}

func TestTagger_RetagReplacesFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	require.NoError(t, os.WriteFile(path, mpegFrames, 0644))

	tagger := NewTagger(nil)
	require.NoError(t, tagger.Tag(path, &model.Song{Title: "Old", ISRC: "OLD1"}))
	require.NoError(t, tagger.Tag(path, &model.Song{Title: "New", ISRC: "NEW1"}))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Equal(t, "New", tag.Title())
	assert.Len(t, tag.GetFrames("TSRC"), 1)
	assert.Equal(t, "NEW1", tag.GetTextFrame("TSRC").Text)
}

func TestTagger_DoNotModify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	require.NoError(t, os.WriteFile(path, mpegFrames, 0644))

	require.NoError(t, NewTagger(nil).Tag(path, &model.Song{Title: "Kept", Artist: "Someone"}))

	cfg := DefaultTagConfig()
	cfg.Title = TagDoNotModify
	cfg.Artist = TagEmpty
	require.NoError(t, NewTagger(cfg).Tag(path, &model.Song{Title: "Ignored", Artist: "Ignored"}))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Equal(t, "Kept", tag.Title())
	assert.Equal(t, "", tag.Artist())
}

func TestTagger_MissingFile(t *testing.T) {
	err := NewTagger(nil).Tag(filepath.Join(t.TempDir(), "missing.mp3"), &model.Song{})
	assert.Error(t, err)
}
