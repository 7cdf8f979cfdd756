package myaudio

import (
	"math"

	"github.com/DrewThomasson/sound-monitor/internal/conf"
)

// fullScale is the maximum absolute value of a 16-bit sample.
const fullScale = 32768.0

// CalculateDB converts a chunk of samples into a calibrated decibel
// reading. The RMS amplitude is computed over all samples upcast to
// float64, referenced to full scale 16-bit input and offset by the
// standard SPL reference plus the operator supplied calibration.
//
// Empty input and near-silent input (RMS below 1) return 0, the silence
// floor. The result is clamped to a minimum of 0, negative readings have
// no meaning in this model. CalculateDB never fails.
func CalculateDB(samples []int16, calibrationOffset float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		f := float64(s)
		sum += f * f
	}

	rms := math.Sqrt(sum / float64(len(samples)))
	if rms < 1 {
		return 0
	}

	db := 20*math.Log10(rms/fullScale) + conf.DBReference + calibrationOffset
	return math.Max(0, db)
}
