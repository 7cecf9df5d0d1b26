package ioutils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// unsafeChars matches everything that is not allowed in a path segment.
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_ -]`)

// SanitizeFileName removes characters that are unsafe in file/folder names.
//
// Every character outside [A-Za-z0-9_ -] is removed, then leading and
// trailing spaces are trimmed. Accented letters, tabs and newlines count as
// unsafe and are dropped like any other punctuation ("Beyoncé" → "Beyonc").
//
// The result is deterministic, and sanitizing an already sanitized name
// returns it unchanged. The result may be empty.
//
// Example:
//
//	SanitizeFileName("Hurry Up, We're Dreaming") // Returns "Hurry Up Were Dreaming"
//	SanitizeFileName("  AC/DC  ")                // Returns "ACDC"
func SanitizeFileName(name string) string {
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, " ")
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("/music/Artist/Album")
//	// Creates /music, /music/Artist, and /music/Artist/Album if needed
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory followed by a rename.
//
// The temporary file is synced to disk before the rename. If prepare is not
// nil it is called with the temporary file's path after the data is written
// and before the rename; an error from prepare aborts the write.
//
// On any failure, including ctx being done before the rename, the temporary
// file is removed and path is left untouched. The final file has mode 0644.
//
// Example:
//
//	err := WriteFileAtomic(ctx, "/music/Artist/Album/Song.flac", content, nil)
func WriteFileAtomic(ctx context.Context, path string, data []byte, prepare func(tmpPath string) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if prepare != nil {
		if err = prepare(tmpPath); err != nil {
			return err
		}
	}

	if err = ctx.Err(); err != nil {
		return err
	}
	if err = os.Chmod(tmpPath, 0644); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}
