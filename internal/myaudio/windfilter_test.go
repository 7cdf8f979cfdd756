package myaudio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 44100

// sineWave generates one second of a pure tone at the given frequency.
func sineWave(freq float64, amplitude float64) []int16 {
	samples := make([]int16, testSampleRate)
	for i := range samples {
		samples[i] = int16(amplitude * math.Sin(2*math.Pi*freq*float64(i)/testSampleRate))
	}
	return samples
}

// signalEnergy sums squared samples, skipping the filter settle-in region.
func signalEnergy(samples []int16, skip int) float64 {
	var sum float64
	for _, s := range samples[skip:] {
		f := float64(s)
		sum += f * f
	}
	return sum
}

func TestWindFilterDisabled(t *testing.T) {
	filter := NewWindFilter(false, 80)

	t.Run("returns_input_unchanged", func(t *testing.T) {
		in := sineWave(40, 6000)
		out := filter.Apply(in, testSampleRate)
		assert.Equal(t, in, out)
	})

	t.Run("empty_input", func(t *testing.T) {
		out := filter.Apply([]int16{}, testSampleRate)
		assert.Empty(t, out)
	})
}

func TestWindFilterEnabled(t *testing.T) {
	filter := NewWindFilter(true, 80)

	t.Run("attenuates_below_cutoff", func(t *testing.T) {
		in := sineWave(40, 6000)
		out := filter.Apply(in, testSampleRate)
		require.Len(t, out, len(in))

		const skip = 4096
		before := signalEnergy(in, skip)
		after := signalEnergy(out, skip)
		assert.Less(t, after, 0.1*before, "40 Hz energy should drop below 10%% with an 80 Hz cutoff")
	})

	t.Run("passes_above_cutoff", func(t *testing.T) {
		in := sineWave(800, 6000)
		out := filter.Apply(in, testSampleRate)
		require.Len(t, out, len(in))

		var peak float64
		for _, s := range out[4096:] {
			peak = math.Max(peak, math.Abs(float64(s)))
		}
		assert.Greater(t, peak, 0.8*6000, "800 Hz amplitude should survive an 80 Hz high-pass")
	})

	t.Run("does_not_mutate_input", func(t *testing.T) {
		in := sineWave(40, 6000)
		saved := make([]int16, len(in))
		copy(saved, in)

		filter.Apply(in, testSampleRate)
		assert.Equal(t, saved, in)
	})

	t.Run("empty_input", func(t *testing.T) {
		out := filter.Apply(nil, testSampleRate)
		assert.Empty(t, out)
	})

	t.Run("very_short_input", func(t *testing.T) {
		in := []int16{100, -200, 300}
		out := filter.Apply(in, testSampleRate)
		assert.Len(t, out, len(in))
	})

	t.Run("all_zero_input", func(t *testing.T) {
		in := make([]int16, 2048)
		out := filter.Apply(in, testSampleRate)
		assert.Equal(t, in, out)
	})

	t.Run("invalid_cutoff_passes_through", func(t *testing.T) {
		beyondNyquist := NewWindFilter(true, float64(testSampleRate))
		in := sineWave(40, 6000)
		out := beyondNyquist.Apply(in, testSampleRate)
		assert.Equal(t, in, out)
	})
}
