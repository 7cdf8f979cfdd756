package media

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeAudioVideoNoVideo(t *testing.T) {
	assert.Empty(t, MergeAudioVideo("/tmp/noise.wav", ""))
}

func TestMergeAudioVideoNoAudio(t *testing.T) {
	assert.Equal(t, "/tmp/clip.mp4", MergeAudioVideo("", "/tmp/clip.mp4"))
}

func TestMergeAudioVideoMissingFiles(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "noise.wav")
	video := filepath.Join(dir, "clip.mp4")

	// neither file exists
	assert.Equal(t, video, MergeAudioVideo(audio, video))

	// audio exists, video missing
	require.NoError(t, os.WriteFile(audio, []byte("riff"), 0o644))
	assert.Equal(t, video, MergeAudioVideo(audio, video))
}

func TestMergeAudioVideoFfmpegFailure(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "noise.wav")
	video := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(audio, []byte("not a wav"), 0o644))
	require.NoError(t, os.WriteFile(video, []byte("not a video"), 0o644))

	// ffmpeg either is absent or rejects the garbage input; both keep the
	// video path unchanged
	assert.Equal(t, video, MergeAudioVideo(audio, video))
}

func TestMergedOutputPath(t *testing.T) {
	assert.Equal(t, "/clips/event_merged.mp4", mergedOutputPath("/clips/event.mp4"))
	assert.Equal(t, "event_merged.mkv", mergedOutputPath("event.mkv"))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.Start(time.Now())
	assert.Empty(t, r.Stop())
}
