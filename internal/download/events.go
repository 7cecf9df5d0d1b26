package download

import "github.com/handiism/playlist-downloader/internal/model"

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// Outcome is the terminal state of one song in a run.
type Outcome int

const (
	// OutcomeNone marks events that do not end a song (retries, summaries).
	OutcomeNone Outcome = iota
	OutcomeSkipped
	OutcomeStored
	OutcomeFetchFailed
	OutcomeStoreFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeStored:
		return "stored"
	case OutcomeFetchFailed:
		return "fetch_failed"
	case OutcomeStoreFailed:
		return "store_failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// ProgressEvent represents a download progress update.
//
// Song, Locator, Path and Err are set when they apply to the event.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	Outcome Outcome

	Song    *model.Song
	Locator string
	Path    string
	Err     error
}
