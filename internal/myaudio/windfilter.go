package myaudio

import (
	"math"

	"github.com/DrewThomasson/sound-monitor/internal/myaudio/equalizer"
)

// windFilterQ is the Butterworth Q value for each biquad pass.
const windFilterQ = 0.7071

// windFilterPasses gives a 24 dB/octave rolloff, steep enough to strip wind
// rumble without audible artifacts above the cutoff.
const windFilterPasses = 2

// WindFilter removes low-frequency wind rumble from outgoing event audio
// with a high-pass filter. It is a pure transform: the input is never
// mutated, a new sample slice is produced when the filter is active.
type WindFilter struct {
	enabled  bool
	cutoffHz float64
}

// NewWindFilter creates a wind filter. When enabled is false Apply returns
// its input unchanged.
func NewWindFilter(enabled bool, cutoffHz float64) *WindFilter {
	return &WindFilter{enabled: enabled, cutoffHz: cutoffHz}
}

// Enabled reports whether the filter is active.
func (w *WindFilter) Enabled() bool {
	return w.enabled
}

// Apply high-pass filters the given samples at the configured cutoff. It
// returns the input slice untouched when the filter is disabled, the input
// is empty, or the cutoff is invalid for the sample rate. The output always
// has the same length as the input. Apply never fails.
func (w *WindFilter) Apply(samples []int16, sampleRate int) []int16 {
	if !w.enabled || len(samples) == 0 {
		return samples
	}

	filter, err := equalizer.NewHighPass(float64(sampleRate), w.cutoffHz, windFilterQ, windFilterPasses)
	if err != nil {
		// Invalid cutoff for this sample rate, pass audio through rather
		// than lose the recording.
		return samples
	}

	buf := make([]float64, len(samples))
	for i, s := range samples {
		buf[i] = float64(s)
	}

	filter.ApplyBatch(buf)

	out := make([]int16, len(buf))
	for i, f := range buf {
		out[i] = clampSample(f)
	}
	return out
}

// clampSample converts a filtered value back to int16, saturating instead
// of wrapping on overshoot.
func clampSample(f float64) int16 {
	switch {
	case f > 32767:
		return 32767
	case f < -32768:
		return -32768
	default:
		return int16(math.Round(f))
	}
}
