// Package media correlates finalized noise events with camera footage by
// muxing the event audio into the matching video clip with ffmpeg.
package media

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/DrewThomasson/sound-monitor/internal/logging"
)

// Recorder starts and stops a video capture covering an event window.
// Implementations are external; the pipeline only drives the lifecycle.
type Recorder interface {
	// Start begins recording at the given event start time.
	Start(eventStart time.Time)
	// Stop ends the recording and returns the clip path, empty when no
	// clip was produced.
	Stop() string
}

// NoopRecorder is the recorder used when video correlation is disabled.
type NoopRecorder struct{}

func (NoopRecorder) Start(time.Time) {}
func (NoopRecorder) Stop() string    { return "" }

// MergeAudioVideo muxes the event audio into the video clip and returns the
// path of the merged file. The merge is best effort and never fails hard:
//
//   - no audio path: the video path is returned unchanged
//   - no video path: there is nothing to merge, returns ""
//   - either file missing on disk, or ffmpeg failing: the video path is
//     returned unchanged
func MergeAudioVideo(audioPath, videoPath string) string {
	log := logging.ForService("media")

	if videoPath == "" {
		return ""
	}
	if audioPath == "" {
		return videoPath
	}

	for _, p := range []string{audioPath, videoPath} {
		if _, err := os.Stat(p); err != nil {
			log.Warn("merge input missing, keeping video as-is", "path", p)
			return videoPath
		}
	}

	outputPath := mergedOutputPath(videoPath)

	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		outputPath,
	}

	cmd := exec.Command("ffmpeg", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		log.Warn("ffmpeg merge failed, keeping video as-is",
			"error", err,
			"output", strings.TrimSpace(string(output)),
		)
		return videoPath
	}

	return outputPath
}

// mergedOutputPath derives the merged clip name from the video clip name.
func mergedOutputPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	base := strings.TrimSuffix(videoPath, ext)
	return fmt.Sprintf("%s_merged%s", base, ext)
}
