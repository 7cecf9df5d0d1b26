package ioutils

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Sufjan Stevens", "Sufjan Stevens"},
		{"comma and apostrophe", "Hurry Up, We're Dreaming", "Hurry Up Were Dreaming"},
		{"path separators", "AC/DC", "ACDC"},
		{"path traversal", "../../etc/passwd", "etcpasswd"},
		{"hyphen and underscore kept", "post-rock_mix", "post-rock_mix"},
		{"accented letters removed", "Beyoncé Café", "Beyonc Caf"},
		{"accented letters removed mid word", "Sigur Rós", "Sigur Rs"},
		{"surrounding whitespace", "  Chicago  ", "Chicago"},
		{"tab removed", "Midnight\tCity", "MidnightCity"},
		{"newline removed", "Tom Waits\n", "Tom Waits"},
		{"dots removed", "Mr. Brightside...", "Mr Brightside"},
		{"non latin removed", "坂本龍一", ""},
		{"only punctuation", "?!*", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.input))
		})
	}
}

func TestSanitizeFileName_Idempotent(t *testing.T) {
	allowed := regexp.MustCompile(`^[A-Za-z0-9_ -]*$`)
	inputs := []string{
		"Hurry Up, We're Dreaming",
		"Sigur Rós — Ágætis byrjun",
		"  \"Quoted\" <Title>: Part 1/2  ",
		"Tom Waits\n",
		"",
	}

	for _, in := range inputs {
		once := SanitizeFileName(in)
		assert.Equal(t, once, SanitizeFileName(once), "sanitizing %q twice", in)
		assert.Equal(t, once, SanitizeFileName(in), "sanitizing %q is deterministic", in)
		assert.Regexp(t, allowed, once)
	}
}

func TestEnsureDir_Repeated(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.flac")

	require.NoError(t, WriteFileAtomic(context.Background(), path, []byte("first"), nil))
	require.NoError(t, WriteFileAtomic(context.Background(), path, []byte("second"), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should remain")
}

func TestWriteFileAtomic_PrepareSeesTempFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")

	var seen string
	err := WriteFileAtomic(context.Background(), path, []byte("data"), func(tmpPath string) error {
		seen = tmpPath
		data, err := os.ReadFile(tmpPath)
		require.NoError(t, err)
		assert.Equal(t, "data", string(data))
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr), "destination must not exist before rename")
		return nil
	})
	require.NoError(t, err)
	assert.NotEqual(t, path, seen)
	assert.FileExists(t, path)
}

func TestWriteFileAtomic_PrepareErrorLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp3")
	boom := errors.New("boom")

	err := WriteFileAtomic(context.Background(), path, []byte("data"), func(string) error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteFileAtomic_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp3")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WriteFileAtomic(ctx, path, []byte("data"), nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, path)
}

func TestWriteFileAtomic_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "song.mp3")

	err := WriteFileAtomic(context.Background(), path, []byte("data"), nil)
	assert.Error(t, err)
}
