package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	ioutils "github.com/handiism/playlist-downloader/internal/io"
)

var (
	// ErrCorrupt matches a *CorruptError with errors.Is.
	ErrCorrupt = errors.New("manifest corrupt")

	// ErrPersist matches a *PersistError with errors.Is.
	ErrPersist = errors.New("manifest not persisted")
)

// CorruptError reports an existing manifest file that cannot be read or parsed.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("manifest %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

func (e *CorruptError) Is(target error) bool { return target == ErrCorrupt }

// PersistError reports a manifest that could not be written durably.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("cannot persist manifest %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

func (e *PersistError) Is(target error) bool { return target == ErrPersist }

// Load reads the manifest at path.
//
// A missing file yields an empty manifest and no error. A file that exists
// but cannot be read or parsed yields a *CorruptError.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, &CorruptError{Path: path, Err: err}
	}

	m := New()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}

	return m, nil
}

// Save writes m to path atomically. A concurrent or later Load observes
// either the previous file or the complete new one.
// Any failure is returned as a *PersistError.
func Save(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return &PersistError{Path: path, Err: err}
	}
	data = append(data, '\n')

	if err := ioutils.WriteFileAtomic(context.Background(), path, data, nil); err != nil {
		return &PersistError{Path: path, Err: err}
	}

	return nil
}

// Store binds Load and Save to one manifest file.
type Store struct {
	Path string
}

// NewStore returns the store for the manifest of a destination directory.
func NewStore(destination string) *Store {
	return &Store{Path: filepath.Join(destination, FileName)}
}

// Load reads the store's manifest. See Load.
func (s *Store) Load() (*Manifest, error) {
	return Load(s.Path)
}

// Save writes m to the store's file. See Save.
func (s *Store) Save(m *Manifest) error {
	return Save(s.Path, m)
}
