package myaudio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLowFrequency(t *testing.T) {
	t.Run("pure_low_tone", func(t *testing.T) {
		// 40 Hz rumble, squarely inside the 20-200 Hz band
		assert.True(t, IsLowFrequency(sineWave(40, 8000), testSampleRate))
	})

	t.Run("pure_high_tone", func(t *testing.T) {
		assert.False(t, IsLowFrequency(sineWave(800, 8000), testSampleRate))
	})

	t.Run("band_edges", func(t *testing.T) {
		assert.True(t, IsLowFrequency(sineWave(25, 8000), testSampleRate))
		assert.True(t, IsLowFrequency(sineWave(190, 8000), testSampleRate))
		assert.False(t, IsLowFrequency(sineWave(260, 8000), testSampleRate))
	})

	t.Run("rumble_dominated_mix", func(t *testing.T) {
		// strong 60 Hz rumble with a weaker 800 Hz component on top
		samples := make([]int16, testSampleRate)
		for i := range samples {
			tt := float64(i) / testSampleRate
			v := 9000*math.Sin(2*math.Pi*60*tt) + 2000*math.Sin(2*math.Pi*800*tt)
			samples[i] = int16(v)
		}
		assert.True(t, IsLowFrequency(samples, testSampleRate))
	})

	t.Run("voice_dominated_mix", func(t *testing.T) {
		samples := make([]int16, testSampleRate)
		for i := range samples {
			tt := float64(i) / testSampleRate
			v := 2000*math.Sin(2*math.Pi*60*tt) + 9000*math.Sin(2*math.Pi*800*tt)
			samples[i] = int16(v)
		}
		assert.False(t, IsLowFrequency(samples, testSampleRate))
	})

	t.Run("silence", func(t *testing.T) {
		assert.False(t, IsLowFrequency(make([]int16, 4096), testSampleRate))
	})

	t.Run("degenerate_input", func(t *testing.T) {
		assert.False(t, IsLowFrequency(nil, testSampleRate))
		assert.False(t, IsLowFrequency([]int16{42}, testSampleRate))
		assert.False(t, IsLowFrequency(sineWave(40, 8000), 0))
	})
}
