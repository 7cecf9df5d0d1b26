package download

import (
	"errors"
	"fmt"
	"time"
)

// ErrStorage matches every *StorageError with errors.Is.
var ErrStorage = errors.New("storage failed")

// StorageError describes a song whose content was fetched but could not
// be written to the destination.
type StorageError struct {
	// Path is the intended destination, empty if it could not be derived.
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("store: %v", e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Report summarizes one run.
type Report struct {
	RunID string

	Total       int
	Stored      int
	Skipped     int
	FetchFailed int
	StoreFailed int
	Cancelled   int

	// Bytes is the size of all content stored in this run.
	Bytes   int64
	Elapsed time.Duration
}

// Errors returns the number of songs that failed to fetch or store.
func (r *Report) Errors() int {
	return r.FetchFailed + r.StoreFailed
}

func (r *Report) record(o Outcome) {
	switch o {
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeStored:
		r.Stored++
	case OutcomeFetchFailed:
		r.FetchFailed++
	case OutcomeStoreFailed:
		r.StoreFailed++
	case OutcomeCancelled:
		r.Cancelled++
	}
}
