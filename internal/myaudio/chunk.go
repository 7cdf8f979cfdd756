// Package myaudio handles PCM audio: chunk representation, loudness
// estimation, pre-event context buffering, filtering, spectral
// classification, WAV encoding and device capture.
package myaudio

import (
	"encoding/binary"
	"time"
)

// Chunk is one fixed-length read from the audio source. Chunks are immutable
// once produced; a stage either drops a chunk or moves it into a buffer.
type Chunk struct {
	Samples    []int16
	SampleRate int
	Timestamp  time.Time
}

// NumSamples returns the number of samples in the chunk.
func (c Chunk) NumSamples() int {
	return len(c.Samples)
}

// BytesToSamples converts little-endian 16-bit PCM bytes to samples.
// A trailing odd byte is dropped.
func BytesToSamples(data []byte) []int16 {
	n := len(data) / 2
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
	}
	return samples
}

// SamplesToBytes converts samples to little-endian 16-bit PCM bytes.
func SamplesToBytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:i*2+2], uint16(s))
	}
	return data
}

// ConcatChunks concatenates the samples of the given chunks in order.
func ConcatChunks(chunks []Chunk) []int16 {
	total := 0
	for _, c := range chunks {
		total += len(c.Samples)
	}
	out := make([]int16, 0, total)
	for _, c := range chunks {
		out = append(out, c.Samples...)
	}
	return out
}
