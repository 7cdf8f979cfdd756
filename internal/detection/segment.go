package detection

import (
	"time"

	"github.com/DrewThomasson/sound-monitor/internal/conf"
	"github.com/DrewThomasson/sound-monitor/internal/myaudio"
)

// Segment is one fixed-duration slice of continuously archived audio.
type Segment struct {
	Start      time.Time
	Samples    []int16
	SampleRate int
}

// Segmenter batches the continuous chunk stream into fixed-duration
// segments for archival, independent of event detection. Owned exclusively
// by the ingestion worker.
type Segmenter struct {
	targetSamples int
	sampleRate    int

	start   time.Time
	samples []int16
}

// NewSegmenter creates a segmenter cutting segments of the standard
// archival duration at the given sample rate.
func NewSegmenter(sampleRate int) *Segmenter {
	return &Segmenter{
		targetSamples: int(conf.SegmentDuration.Seconds() * float64(sampleRate)),
		sampleRate:    sampleRate,
	}
}

// Process adds a chunk to the current segment. It returns a finished
// segment once enough audio has accumulated, nil otherwise.
func (s *Segmenter) Process(chunk myaudio.Chunk) *Segment {
	if len(s.samples) == 0 {
		s.start = chunk.Timestamp
		if s.samples == nil {
			s.samples = make([]int16, 0, s.targetSamples)
		}
	}
	s.samples = append(s.samples, chunk.Samples...)

	if len(s.samples) < s.targetSamples {
		return nil
	}
	return s.cut()
}

// Flush returns the partial segment accumulated so far, nil when empty.
// Called on shutdown so no archived audio is lost.
func (s *Segmenter) Flush() *Segment {
	if len(s.samples) == 0 {
		return nil
	}
	return s.cut()
}

func (s *Segmenter) cut() *Segment {
	seg := &Segment{
		Start:      s.start,
		Samples:    s.samples,
		SampleRate: s.sampleRate,
	}
	s.samples = nil
	return seg
}
