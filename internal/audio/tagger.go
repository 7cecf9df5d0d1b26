package audio

import (
	"strconv"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/handiism/playlist-downloader/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
//
// Each tag field can be configured independently to determine whether
// it should be modified, cleared, or left unchanged.
type TagEditAction int

const (
	// TagEmpty clears the tag value.
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value from the playlist.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
type TagConfig struct {
	// Title controls the TIT2 (Title) frame.
	Title TagEditAction

	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// Album controls the TALB (Album title) frame.
	Album TagEditAction

	// Length controls the TLEN (Length, in milliseconds) frame.
	Length TagEditAction

	// ISRC controls the TSRC (International Standard Recording Code) frame.
	ISRC TagEditAction
}

// DefaultTagConfig returns the default tag configuration, which
// writes every supported frame from the playlist data.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		Title:  TagModify,
		Artist: TagModify,
		Album:  TagModify,
		Length: TagModify,
		ISRC:   TagModify,
	}
}

// Tagger writes ID3 tags to stored MP3 content.
//
// Tags already present in the fetched content are kept unless the
// TagConfig says otherwise.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	if tagger.Supports(content.Tag) {
//	    err := tagger.Tag(path, song)
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// Supports reports whether content with the given tag can carry ID3 frames.
func (t *Tagger) Supports(tag string) bool {
	return strings.EqualFold(tag, "mp3")
}

// Tag writes the song's metadata into the ID3 tag of the file at path.
func (t *Tagger) Tag(path string, song *model.Song) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	t.updateStringTags(tag, song)

	return tag.Save()
}

// updateStringTags updates text frames based on configuration.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, song *model.Song) {
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	switch t.config.Title {
	case TagEmpty:
		tag.DeleteFrames("TIT2")
	case TagModify:
		tag.SetTitle(song.Title)
	}

	switch t.config.Artist {
	case TagEmpty:
		tag.DeleteFrames("TPE1")
	case TagModify:
		tag.SetArtist(song.Artist)
	}

	switch t.config.Album {
	case TagEmpty:
		tag.DeleteFrames("TALB")
	case TagModify:
		tag.SetAlbum(song.Album)
	}

	switch t.config.Length {
	case TagEmpty:
		tag.DeleteFrames("TLEN")
	case TagModify:
		if song.Duration > 0 {
			tag.DeleteFrames("TLEN")
			tag.AddTextFrame("TLEN", id3v2.EncodingUTF8, strconv.Itoa(song.Duration*1000))
		}
	}

	switch t.config.ISRC {
	case TagEmpty:
		tag.DeleteFrames("TSRC")
	case TagModify:
		if song.ISRC != "" {
			tag.DeleteFrames("TSRC")
			tag.AddTextFrame("TSRC", id3v2.EncodingUTF8, song.ISRC)
		}
	}
}
