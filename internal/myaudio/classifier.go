package myaudio

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/DrewThomasson/sound-monitor/internal/conf"
)

// IsLowFrequency reports whether the bulk of the spectral energy of the
// given audio lies in the low band (20-200 Hz), heuristically indicating
// rumble such as passing vehicles rather than voice or impact sounds.
//
// The magnitude spectrum is computed with a real FFT over the full signal.
// Energy is summed as squared magnitudes; the signal classifies as
// low-frequency when the low band holds more than the configured share of
// the total. Silent or empty input classifies as false.
func IsLowFrequency(samples []int16, sampleRate int) bool {
	if len(samples) < 2 || sampleRate <= 0 {
		return false
	}

	buf := make([]float64, len(samples))
	for i, s := range samples {
		buf[i] = float64(s)
	}

	fft := fourier.NewFFT(len(buf))
	coeffs := fft.Coefficients(nil, buf)

	binWidth := float64(sampleRate) / float64(len(buf))

	var lowEnergy, totalEnergy float64
	for i, c := range coeffs {
		mag2 := real(c)*real(c) + imag(c)*imag(c)
		totalEnergy += mag2

		freq := float64(i) * binWidth
		if freq >= conf.LowBandMinHz && freq <= conf.LowBandMaxHz {
			lowEnergy += mag2
		}
	}

	if totalEnergy == 0 {
		return false
	}
	return lowEnergy/totalEnergy > conf.LowFrequencyRatio
}
