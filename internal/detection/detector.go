// Package detection implements the real-time noise event pipeline: the
// threshold state machine, continuous segment batching and the ingestion
// driver wiring them to capture, storage and notification.
package detection

import (
	"log/slog"
	"time"

	"github.com/DrewThomasson/sound-monitor/internal/conf"
	"github.com/DrewThomasson/sound-monitor/internal/logging"
	"github.com/DrewThomasson/sound-monitor/internal/myaudio"
)

// detector states
type state int

const (
	stateIdle state = iota
	stateActive
	statePostRoll
)

// Result is a finalized noise event before encoding and persistence.
type Result struct {
	Start        time.Time
	Duration     float64 // seconds
	PeakDB       float64
	AvgDB        float64
	LowFrequency bool
	Extreme      bool // peak exceeded threshold by the extreme margin
	Samples      []int16
	SampleRate   int
}

// accumulator holds the in-flight event while the detector is active or in
// post-roll. It exists only in those states.
type accumulator struct {
	start    time.Time
	peakDB   float64
	chunks   []myaudio.Chunk
	postRoll int
}

// Detector is the noise event state machine. It consumes (chunk, dB) pairs
// and produces zero or more finalized events. It is owned exclusively by
// the ingestion worker and must not be shared.
type Detector struct {
	thresholdDB       float64
	calibrationOffset float64
	postRollChunks    int

	ring   *myaudio.ChunkRing
	filter *myaudio.WindFilter

	state state
	acc   *accumulator

	discarded uint64

	// onEventStart fires on the idle to active transition, before any
	// audio of the new event is processed further.
	onEventStart func(time.Time)

	// now is swapped out in tests
	now func() time.Time

	log *slog.Logger
}

// NewDetector creates a detector for the given settings.
func NewDetector(settings *conf.Settings) *Detector {
	return &Detector{
		thresholdDB:       settings.Monitor.ThresholdDB,
		calibrationOffset: settings.Monitor.CalibrationOffset,
		postRollChunks:    settings.PostRollChunks(),
		ring:              myaudio.NewChunkRing(settings.PreRollChunks()),
		filter:            myaudio.NewWindFilter(settings.Audio.WindFilter.Enabled, settings.Audio.WindFilter.CutoffHz),
		state:             stateIdle,
		now:               time.Now,
		log:               logging.ForService("detector"),
	}
}

// SetEventStartHook registers a callback fired when a new event opens.
func (d *Detector) SetEventStartHook(fn func(time.Time)) {
	d.onEventStart = fn
}

// Process advances the state machine by one (chunk, dB) pair. It returns a
// finalized event when one closed on this step, nil otherwise.
func (d *Detector) Process(chunk myaudio.Chunk, db float64) *Result {
	loud := db >= d.thresholdDB

	switch d.state {
	case stateIdle:
		if !loud {
			d.ring.Push(chunk)
			return nil
		}
		// open a new event seeded with the pre-roll context
		start := d.now()
		preRoll := d.ring.Snapshot()
		chunks := make([]myaudio.Chunk, 0, len(preRoll)+1)
		chunks = append(chunks, preRoll...)
		chunks = append(chunks, chunk)
		d.acc = &accumulator{
			start:  start,
			peakDB: db,
			chunks: chunks,
		}
		d.state = stateActive
		d.log.Info("loud noise detected", "db", db, "threshold", d.thresholdDB)
		if d.onEventStart != nil {
			d.onEventStart(start)
		}
		return nil

	case stateActive:
		d.acc.chunks = append(d.acc.chunks, chunk)
		if loud {
			d.acc.peakDB = max(d.acc.peakDB, db)
			return nil
		}
		d.state = statePostRoll
		d.acc.postRoll = 1
		return d.maybeClose()

	case statePostRoll:
		d.acc.chunks = append(d.acc.chunks, chunk)
		if loud {
			// noise resumed before the post-roll expired
			d.acc.peakDB = max(d.acc.peakDB, db)
			d.acc.postRoll = 0
			d.state = stateActive
			return nil
		}
		d.acc.postRoll++
		return d.maybeClose()
	}

	return nil
}

// maybeClose finalizes the event once the post-roll has run its course.
func (d *Detector) maybeClose() *Result {
	if d.acc.postRoll < d.postRollChunks {
		return nil
	}
	return d.finalize()
}

// Flush force-finalizes an in-flight event on shutdown. The minimum
// duration filter still applies.
func (d *Detector) Flush() *Result {
	if d.state == stateIdle {
		return nil
	}
	return d.finalize()
}

// Discarded returns how many events were dropped as transient spikes.
func (d *Detector) Discarded() uint64 {
	return d.discarded
}

// finalize turns the accumulator into a Result and resets the detector.
// Events shorter than the minimum duration are discarded silently.
func (d *Detector) finalize() *Result {
	acc := d.acc
	d.acc = nil
	d.state = stateIdle
	// Post-roll audio is part of the closed event; keeping it in the ring
	// would replay it as pre-roll of the next one.
	d.ring.Clear()

	duration := d.now().Sub(acc.start).Seconds()
	if duration < conf.MinEventDuration.Seconds() {
		d.discarded++
		d.log.Debug("discarding transient spike", "duration", duration)
		return nil
	}

	var dbSum float64
	for _, c := range acc.chunks {
		dbSum += myaudio.CalculateDB(c.Samples, d.calibrationOffset)
	}
	avgDB := dbSum / float64(len(acc.chunks))

	samples := myaudio.ConcatChunks(acc.chunks)
	sampleRate := acc.chunks[0].SampleRate

	result := &Result{
		Start:        acc.start,
		Duration:     duration,
		PeakDB:       acc.peakDB,
		AvgDB:        avgDB,
		LowFrequency: myaudio.IsLowFrequency(samples, sampleRate),
		Extreme:      acc.peakDB >= d.thresholdDB+conf.ExtremeMarginDB,
		Samples:      d.filter.Apply(samples, sampleRate),
		SampleRate:   sampleRate,
	}

	d.log.Info("noise event finalized",
		"duration", result.Duration,
		"peak_db", result.PeakDB,
		"avg_db", result.AvgDB,
		"low_frequency", result.LowFrequency,
		"extreme", result.Extreme,
	)

	return result
}
