package detection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrewThomasson/sound-monitor/internal/myaudio"
)

func TestSegmenter(t *testing.T) {
	const sampleRate = 8000
	const chunkSamples = sampleRate // one second per chunk
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	chunkAt := func(n int) myaudio.Chunk {
		return myaudio.Chunk{
			Samples:    make([]int16, chunkSamples),
			SampleRate: sampleRate,
			Timestamp:  base.Add(time.Duration(n) * time.Second),
		}
	}

	t.Run("cuts_at_segment_duration", func(t *testing.T) {
		s := NewSegmenter(sampleRate)

		var seg *Segment
		for i := 0; i < 60; i++ {
			require.Nil(t, seg, "segment closed early at chunk %d", i)
			seg = s.Process(chunkAt(i))
		}

		require.NotNil(t, seg)
		assert.Equal(t, base, seg.Start)
		assert.Len(t, seg.Samples, 60*sampleRate)
		assert.Equal(t, sampleRate, seg.SampleRate)
	})

	t.Run("starts_fresh_after_cut", func(t *testing.T) {
		s := NewSegmenter(sampleRate)
		for i := 0; i < 60; i++ {
			s.Process(chunkAt(i))
		}

		assert.Nil(t, s.Process(chunkAt(60)))
		seg := s.Flush()
		require.NotNil(t, seg)
		assert.Equal(t, base.Add(60*time.Second), seg.Start)
		assert.Len(t, seg.Samples, sampleRate)
	})

	t.Run("flush_empty_returns_nil", func(t *testing.T) {
		s := NewSegmenter(sampleRate)
		assert.Nil(t, s.Flush())
	})

	t.Run("flush_returns_partial", func(t *testing.T) {
		s := NewSegmenter(sampleRate)
		for i := 0; i < 10; i++ {
			require.Nil(t, s.Process(chunkAt(i)))
		}

		seg := s.Flush()
		require.NotNil(t, seg)
		assert.Len(t, seg.Samples, 10*sampleRate)
		assert.Nil(t, s.Flush(), "flush drains the accumulator")
	})
}
