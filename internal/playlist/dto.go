package playlist

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/handiism/playlist-downloader/internal/model"
)

// FlexInt is an integer that the upstream service writes either as a JSON
// number or as a numeric string ("356"). null and "" decode as 0.
type FlexInt int

// UnmarshalJSON accepts 356, 356.0, "356" and null.
func (fi *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*fi = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*fi = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		*fi = FlexInt(n)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*fi = FlexInt(f)
	return nil
}

// JSONPlaylist is the playlist document, without the optional "results" envelope.
type JSONPlaylist struct {
	Data  JSONPlaylistData  `json:"DATA"`
	Songs JSONPlaylistSongs `json:"SONGS"`
}

// JSONPlaylistData holds the playlist summary.
type JSONPlaylistData struct {
	SongCount FlexInt `json:"NB_SONG"`
	Duration  FlexInt `json:"DURATION"`
	Title     string  `json:"TITLE"`
}

// JSONPlaylistSongs holds the song list.
type JSONPlaylistSongs struct {
	Data  []JSONSong `json:"data"`
	Total FlexInt    `json:"total"`
}

// JSONSong is one song of the playlist.
type JSONSong struct {
	Title    string  `json:"SNG_TITLE"`
	Artist   string  `json:"ART_NAME"`
	Album    string  `json:"ALB_TITLE"`
	Duration FlexInt `json:"DURATION"`
	ISRC     string  `json:"ISRC"`
}

// ToSong converts JSONSong to a model.Song.
func (js *JSONSong) ToSong() *model.Song {
	return &model.Song{
		Title:    js.Title,
		Artist:   js.Artist,
		Album:    js.Album,
		Duration: int(js.Duration),
		ISRC:     js.ISRC,
	}
}

// ToPlaylist converts JSONPlaylist to a model.Playlist.
//
// A missing song count or duration in the summary is computed from the songs.
func (jp *JSONPlaylist) ToPlaylist() *model.Playlist {
	p := &model.Playlist{
		Summary: model.Summary{
			Title:     jp.Data.Title,
			SongCount: int(jp.Data.SongCount),
			Duration:  int(jp.Data.Duration),
		},
		Songs: make([]*model.Song, 0, len(jp.Songs.Data)),
	}

	for i := range jp.Songs.Data {
		p.Songs = append(p.Songs, jp.Songs.Data[i].ToSong())
	}

	if p.Summary.SongCount == 0 {
		p.Summary.SongCount = len(p.Songs)
	}
	if p.Summary.Duration == 0 {
		p.Summary.Duration = p.TotalDuration()
	}

	return p
}
