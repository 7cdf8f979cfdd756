package media

import (
	"os"
	"path/filepath"
	"time"

	"github.com/DrewThomasson/sound-monitor/internal/logging"
)

// videoExtensions are the clip formats the camera is known to produce.
var videoExtensions = map[string]bool{
	".mp4": true,
	".mkv": true,
	".avi": true,
	".mov": true,
}

// ClipDirRecorder correlates events with a camera that writes clips to a
// directory on its own. Start records the event start; Stop returns the
// newest clip modified at or after that moment, or empty when none exists.
type ClipDirRecorder struct {
	dir        string
	eventStart time.Time
}

// NewClipDirRecorder creates a recorder watching the given clip directory.
func NewClipDirRecorder(dir string) *ClipDirRecorder {
	return &ClipDirRecorder{dir: dir}
}

func (r *ClipDirRecorder) Start(eventStart time.Time) {
	r.eventStart = eventStart
}

func (r *ClipDirRecorder) Stop() string {
	log := logging.ForService("media")

	start := r.eventStart
	r.eventStart = time.Time{}
	if start.IsZero() {
		return ""
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		log.Warn("cannot read video clip directory", "dir", r.dir, "error", err)
		return ""
	}

	var newest string
	var newestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || !videoExtensions[filepath.Ext(entry.Name())] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		// the camera touches the clip while the event is in progress
		if info.ModTime().Before(start) {
			continue
		}
		if info.ModTime().After(newestMod) {
			newest = filepath.Join(r.dir, entry.Name())
			newestMod = info.ModTime()
		}
	}

	if newest == "" {
		log.Debug("no video clip matched the event window", "dir", r.dir)
	}
	return newest
}
