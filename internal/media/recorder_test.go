package media

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeClip(t *testing.T, dir, name string, modTime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("clip"), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
	return path
}

func TestClipDirRecorderPicksNewestClip(t *testing.T) {
	dir := t.TempDir()
	eventStart := time.Now().Add(-time.Minute)

	writeClip(t, dir, "old.mp4", eventStart.Add(-time.Hour))
	writeClip(t, dir, "during.mp4", eventStart.Add(10*time.Second))
	want := writeClip(t, dir, "latest.mkv", eventStart.Add(30*time.Second))
	writeClip(t, dir, "notes.txt", eventStart.Add(40*time.Second))

	r := NewClipDirRecorder(dir)
	r.Start(eventStart)
	assert.Equal(t, want, r.Stop())
}

func TestClipDirRecorderNoMatchingClip(t *testing.T) {
	dir := t.TempDir()
	eventStart := time.Now()

	writeClip(t, dir, "old.mp4", eventStart.Add(-time.Hour))

	r := NewClipDirRecorder(dir)
	r.Start(eventStart)
	assert.Empty(t, r.Stop())
}

func TestClipDirRecorderStopWithoutStart(t *testing.T) {
	r := NewClipDirRecorder(t.TempDir())
	assert.Empty(t, r.Stop())
}

func TestClipDirRecorderMissingDir(t *testing.T) {
	r := NewClipDirRecorder(filepath.Join(t.TempDir(), "nope"))
	r.Start(time.Now())
	assert.Empty(t, r.Stop())
}
