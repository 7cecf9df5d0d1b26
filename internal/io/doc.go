// Package ioutils provides file system utilities for the playlist downloader.
//
// This package contains functions for:
//   - Filename sanitization
//   - Directory creation
//   - Atomic file writes
//
// # Filename Sanitization
//
// SanitizeFileName reduces free text to a filesystem-safe path segment:
//
//	safe := ioutils.SanitizeFileName("Hurry Up, We're Dreaming") // "Hurry Up Were Dreaming"
//	safe = ioutils.SanitizeFileName("Beyoncé")                   // "Beyonce"
//
// # Atomic Writes
//
// WriteFileAtomic writes to a temporary file next to the destination and
// renames it into place, so readers observe either the old content or the
// complete new content, never a partial file:
//
//	err := ioutils.WriteFileAtomic(ctx, "/music/references.json", data, nil)
//
// The optional prepare callback runs against the temporary file before the
// rename, which is where stored audio gets its tags.
package ioutils
