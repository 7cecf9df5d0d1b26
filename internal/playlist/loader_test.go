package playlist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	p, err := Load(filepath.Join("testdata", "playlist.json"))
	require.NoError(t, err)

	assert.Equal(t, "Late Night", p.Summary.Title)
	assert.Equal(t, 2, p.Summary.SongCount)
	assert.Equal(t, 600, p.Summary.Duration)

	require.Len(t, p.Songs, 2)
	assert.Equal(t, "Chicago", p.Songs[0].Title)
	assert.Equal(t, "Sufjan Stevens", p.Songs[0].Artist)
	assert.Equal(t, "Illinois", p.Songs[0].Album)
	assert.Equal(t, 356, p.Songs[0].Duration)
	assert.Equal(t, "A1", p.Songs[0].ISRC)
	assert.Equal(t, 244, p.Songs[1].Duration)
	assert.Equal(t, "Hurry Up, We're Dreaming", p.Songs[1].Album)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_ValidationErrorCarriesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"SONGS": {"data": [{"SNG_TITLE": "x"}]}}`), 0644))

	_, err := Load(path)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, path, ve.Path)
	assert.Contains(t, err.Error(), path)
}

func TestParse_WithoutEnvelope(t *testing.T) {
	doc := `{
		"DATA": {"TITLE": "Flat"},
		"SONGS": {"data": [
			{"SNG_TITLE": "A", "ART_NAME": "X", "ALB_TITLE": "Y", "DURATION": 10, "ISRC": "I1"},
			{"SNG_TITLE": "B", "ART_NAME": "X", "ALB_TITLE": "Y", "DURATION": 20, "ISRC": "I2"}
		]}
	}`

	p, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "Flat", p.Summary.Title)
	assert.Equal(t, 2, p.Summary.SongCount, "count falls back to the song list")
	assert.Equal(t, 30, p.Summary.Duration, "duration falls back to the song total")
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		problems int
	}{
		{"not json", `{"results": `, 1},
		{"array document", `[1, 2]`, 1},
		{"envelope not object", `{"results": []}`, 1},
		{"no songs", `{"results": {"DATA": {}}}`, 1},
		{"songs not array", `{"SONGS": {"data": {}}}`, 1},
		{"bad number", `{"SONGS": {"data": [{"SNG_TITLE": "A", "ART_NAME": "B", "ISRC": "C", "DURATION": "3:56"}]}}`, 1},
		{"missing fields", `{"SONGS": {"data": [{"DURATION": -1}]}}`, 4},
		{"problems aggregated across songs", `{"SONGS": {"data": [{"SNG_TITLE": "A", "ART_NAME": "B"}, {"SNG_TITLE": "C", "ISRC": "D"}]}}`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Len(t, ve.Problems, tt.problems)
		})
	}
}

func TestParse_EmptySongList(t *testing.T) {
	p, err := Parse([]byte(`{"results": {"DATA": {"TITLE": "Empty"}, "SONGS": {"data": []}}}`))
	require.NoError(t, err)
	assert.Empty(t, p.Songs)
	assert.Equal(t, 0, p.Summary.SongCount)
}

func TestFlexInt(t *testing.T) {
	tests := []struct {
		in      string
		want    FlexInt
		wantErr bool
	}{
		{`356`, 356, false},
		{`356.0`, 356, false},
		{`"356"`, 356, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`"abc"`, 0, true},
		{`true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var fi FlexInt
			err := fi.UnmarshalJSON([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, fi)
		})
	}
}
