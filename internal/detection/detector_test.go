package detection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrewThomasson/sound-monitor/internal/conf"
	"github.com/DrewThomasson/sound-monitor/internal/myaudio"
)

const (
	quietAmp   = 100   // ~43.7 dB
	loudAmp    = 6000  // ~79.3 dB
	extremeAmp = 16000 // ~87.8 dB
)

func testSettings() *conf.Settings {
	s := &conf.Settings{}
	s.Monitor.ThresholdDB = 75
	s.Monitor.PreEventSeconds = 2
	s.Monitor.PostEventSeconds = 2
	s.Audio.SampleRate = 44100
	s.Audio.ChunkSize = 1024
	s.Audio.Channels = 1
	return s
}

// harness drives a detector with a deterministic clock advancing one chunk
// duration per processed chunk.
type harness struct {
	d        *Detector
	settings *conf.Settings
	clock    time.Time
	chunkDur time.Duration
}

func newHarness(t *testing.T, settings *conf.Settings) *harness {
	t.Helper()
	h := &harness{
		d:        NewDetector(settings),
		settings: settings,
		clock:    time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC),
	}
	h.chunkDur = time.Duration(float64(settings.Audio.ChunkSize) / float64(settings.Audio.SampleRate) * float64(time.Second))
	h.d.now = func() time.Time { return h.clock }
	return h
}

// feed processes one constant-amplitude chunk and advances the clock.
func (h *harness) feed(amplitude int16) *Result {
	samples := make([]int16, h.settings.Audio.ChunkSize)
	for i := range samples {
		samples[i] = amplitude
	}
	chunk := myaudio.Chunk{
		Samples:    samples,
		SampleRate: h.settings.Audio.SampleRate,
		Timestamp:  h.clock,
	}
	db := myaudio.CalculateDB(samples, h.settings.Monitor.CalibrationOffset)
	res := h.d.Process(chunk, db)
	h.clock = h.clock.Add(h.chunkDur)
	return res
}

// feedN processes n chunks and returns any finalized events.
func (h *harness) feedN(amplitude int16, n int) []*Result {
	var results []*Result
	for i := 0; i < n; i++ {
		if res := h.feed(amplitude); res != nil {
			results = append(results, res)
		}
	}
	return results
}

func TestDetectorQuietStreamProducesNoEvents(t *testing.T) {
	h := newHarness(t, testSettings())

	results := h.feedN(quietAmp, 500)
	assert.Empty(t, results)
	assert.Nil(t, h.d.Flush())
}

func TestDetectorDisabledPreRoll(t *testing.T) {
	settings := testSettings()
	settings.Monitor.PreEventSeconds = 0
	h := newHarness(t, settings)

	h.feedN(quietAmp, 20)
	h.feedN(loudAmp, 10)
	results := h.feedN(quietAmp, settings.PostRollChunks())

	require.Len(t, results, 1)
	event := results[0]
	// no pre-event context at all: the event opens with the crossing chunk
	wantSamples := (10 + settings.PostRollChunks()) * settings.Audio.ChunkSize
	assert.Len(t, event.Samples, wantSamples)
	assert.Equal(t, int16(loudAmp), event.Samples[0])
}

func TestDetectorSingleEventLifecycle(t *testing.T) {
	settings := testSettings()
	h := newHarness(t, settings)
	postRoll := settings.PostRollChunks()

	// quiet preamble fills the pre-roll ring
	require.Empty(t, h.feedN(quietAmp, 100))

	// ~2.5 seconds of loud audio
	const loudChunks = 108
	require.Empty(t, h.feedN(loudAmp, loudChunks))

	// the event stays open until the full post-roll elapses
	var event *Result
	for i := 0; i < postRoll; i++ {
		event = h.feed(quietAmp)
		if i < postRoll-1 {
			require.Nil(t, event, "event closed before post-roll expired at chunk %d", i)
		}
	}
	require.NotNil(t, event, "event should close when the post-roll expires")

	chunkSec := float64(settings.Audio.ChunkSize) / float64(settings.Audio.SampleRate)
	wantDuration := float64(loudChunks+postRoll-1) * chunkSec
	assert.InDelta(t, wantDuration, event.Duration, 0.1)

	loudDB := myaudio.CalculateDB(make16(loudAmp, settings.Audio.ChunkSize), 0)
	assert.InDelta(t, loudDB, event.PeakDB, 0.01)

	assert.Greater(t, event.AvgDB, 0.0)
	assert.Less(t, event.AvgDB, event.PeakDB, "average includes quiet pre and post-roll chunks")
	assert.False(t, event.Extreme)

	// pre-roll + active + post-roll audio
	wantChunks := settings.PreRollChunks() + loudChunks + postRoll
	assert.Len(t, event.Samples, wantChunks*settings.Audio.ChunkSize)
	assert.Equal(t, int16(quietAmp), event.Samples[0], "event audio starts with pre-roll context")
}

func TestDetectorPeakTracksMaximum(t *testing.T) {
	settings := testSettings()
	settings.Monitor.PostEventSeconds = 0.2
	h := newHarness(t, settings)

	h.feed(6000)
	h.feed(9000)
	h.feed(7000)
	results := h.feedN(quietAmp, settings.PostRollChunks())

	require.Len(t, results, 1)
	wantPeak := myaudio.CalculateDB(make16(9000, settings.Audio.ChunkSize), 0)
	assert.InDelta(t, wantPeak, results[0].PeakDB, 0.01)
}

func TestDetectorDiscardsTransientSpikes(t *testing.T) {
	t.Run("on_flush", func(t *testing.T) {
		h := newHarness(t, testSettings())
		h.feed(loudAmp)
		h.feed(loudAmp)

		assert.Nil(t, h.d.Flush())
		assert.EqualValues(t, 1, h.d.Discarded())
	})

	t.Run("short_post_roll", func(t *testing.T) {
		settings := testSettings()
		settings.Monitor.PostEventSeconds = 0.02
		h := newHarness(t, settings)

		h.feed(loudAmp)
		results := h.feedN(quietAmp, 5)

		assert.Empty(t, results, "sub-100ms event must not be finalized")
		assert.EqualValues(t, 1, h.d.Discarded())
	})
}

func TestDetectorPostRollReentry(t *testing.T) {
	settings := testSettings()
	h := newHarness(t, settings)
	postRoll := settings.PostRollChunks()

	var results []*Result
	results = append(results, h.feedN(loudAmp, 10)...)
	// quiet gap shorter than the post-roll, noise resumes
	results = append(results, h.feedN(quietAmp, postRoll/2)...)
	results = append(results, h.feedN(loudAmp, 10)...)
	// now let it close for real
	results = append(results, h.feedN(quietAmp, postRoll)...)

	require.Len(t, results, 1, "resumed noise must merge into one event")

	chunkSec := float64(settings.Audio.ChunkSize) / float64(settings.Audio.SampleRate)
	wantDuration := float64(10+postRoll/2+10+postRoll-1) * chunkSec
	assert.InDelta(t, wantDuration, results[0].Duration, 0.1)
}

func TestDetectorIsolatedSpikesStayDistinct(t *testing.T) {
	settings := testSettings()
	settings.Monitor.PostEventSeconds = 0.2
	h := newHarness(t, settings)
	postRoll := settings.PostRollChunks()

	var events []*Result
	for i := 0; i < 50; i++ {
		events = append(events, h.feedN(loudAmp, 5)...)
		events = append(events, h.feedN(quietAmp, postRoll+10)...)
	}

	assert.Len(t, events, 50, "each spike separated by more than the post-roll is its own event")
}

func TestDetectorExtremeFlag(t *testing.T) {
	settings := testSettings()
	settings.Monitor.PostEventSeconds = 0.2
	h := newHarness(t, settings)

	t.Run("extreme_peak", func(t *testing.T) {
		h.feedN(extremeAmp, 10)
		results := h.feedN(quietAmp, settings.PostRollChunks())
		require.Len(t, results, 1)
		assert.True(t, results[0].Extreme)
	})

	t.Run("ordinary_peak", func(t *testing.T) {
		h.feedN(loudAmp, 10)
		results := h.feedN(quietAmp, settings.PostRollChunks())
		require.Len(t, results, 1)
		assert.False(t, results[0].Extreme)
	})
}

func TestDetectorFlushFinalizesInFlightEvent(t *testing.T) {
	settings := testSettings()
	h := newHarness(t, settings)

	h.feedN(loudAmp, 50)
	event := h.d.Flush()

	require.NotNil(t, event)
	chunkSec := float64(settings.Audio.ChunkSize) / float64(settings.Audio.SampleRate)
	assert.InDelta(t, 50*chunkSec, event.Duration, 0.1)

	// detector is reusable after a flush
	assert.Nil(t, h.d.Flush())
	assert.Empty(t, h.feedN(quietAmp, 10))
}

func TestDetectorEventStartHook(t *testing.T) {
	settings := testSettings()
	h := newHarness(t, settings)

	var starts []time.Time
	h.d.SetEventStartHook(func(start time.Time) {
		starts = append(starts, start)
	})

	h.feedN(quietAmp, 10)
	h.feedN(loudAmp, 3)
	require.Len(t, starts, 1, "hook fires once per event, on the opening chunk")
	h.feedN(loudAmp, 3)
	assert.Len(t, starts, 1)
}

func make16(amplitude int16, n int) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = amplitude
	}
	return samples
}
