package playlist

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/handiism/playlist-downloader/internal/model"
)

// envelopeKey wraps the playlist in the service's API responses.
const envelopeKey = "results"

// ErrInvalid matches every *ValidationError with errors.Is.
var ErrInvalid = errors.New("invalid playlist")

// ValidationError lists every problem found in a playlist document.
type ValidationError struct {
	Path     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid playlist %s:\n  - %s", e.Path, strings.Join(e.Problems, "\n  - "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

// Load reads and validates the playlist JSON at path.
func Load(path string) (*model.Playlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read playlist: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Path = path
		}
		return nil, err
	}
	return p, nil
}

// Parse decodes and validates a playlist document. The playlist may be
// wrapped in a "results" object or sit at the top level.
func Parse(data []byte) (*model.Playlist, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ValidationError{Problems: []string{"document is not valid JSON"}}
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, &ValidationError{Problems: []string{"document is not a JSON object"}}
	}

	raw := data
	if results := doc.Get(envelopeKey); results.Exists() {
		if !results.IsObject() {
			return nil, &ValidationError{Problems: []string{fmt.Sprintf("%q is not an object", envelopeKey)}}
		}
		raw = []byte(results.Raw)
	}

	if !gjson.GetBytes(raw, "SONGS.data").IsArray() {
		return nil, &ValidationError{Problems: []string{"SONGS.data is missing or not an array"}}
	}

	var jp JSONPlaylist
	if err := json.Unmarshal(raw, &jp); err != nil {
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}

	p := jp.ToPlaylist()
	if problems := Validate(p); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	return p, nil
}

// Validate checks every song of p and returns one message per problem.
func Validate(p *model.Playlist) []string {
	var problems []string

	for i, s := range p.Songs {
		where := fmt.Sprintf("song %d", i+1)
		if s.Title != "" {
			where = fmt.Sprintf("song %d (%s)", i+1, s.Title)
		}

		if strings.TrimSpace(s.Title) == "" {
			problems = append(problems, where+": SNG_TITLE is empty")
		}
		if strings.TrimSpace(s.Artist) == "" {
			problems = append(problems, where+": ART_NAME is empty")
		}
		if strings.TrimSpace(s.ISRC) == "" {
			problems = append(problems, where+": ISRC is empty")
		}
		if s.Duration < 0 {
			problems = append(problems, fmt.Sprintf("%s: DURATION %d is negative", where, s.Duration))
		}
	}

	return problems
}
