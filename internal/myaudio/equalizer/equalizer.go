// Package equalizer provides biquad digital filters based on Robert
// Bristow-Johnson's audio EQ cookbook. The sound monitor uses the high-pass
// filter for wind noise removal; the low-pass variant is kept for filter
// verification in tests.
package equalizer

import (
	"fmt"
	"math"
)

// FilterName identifies the kind of digital filter.
type FilterName int

const (
	Undefined FilterName = iota
	LowPass
	HighPass
)

// Filter holds the digital filter parameters and per-pass state.
type Filter struct {
	name FilterName

	// state variables, one set per pass
	in1  []float64
	in2  []float64
	out1 []float64
	out2 []float64

	passes int

	// pre-computed normalized coefficients
	b0a0, b1a0, b2a0, a1a0, a2a0 float64
}

// IsZero returns true when f is not initialized.
func (f *Filter) IsZero() bool {
	return f.name == Undefined
}

// newFilter creates a filter from raw biquad coefficients with the
// specified number of passes.
func newFilter(name FilterName, a0, a1, a2, b0, b1, b2 float64, passes int) *Filter {
	return &Filter{
		name:   name,
		passes: passes,
		in1:    make([]float64, passes),
		in2:    make([]float64, passes),
		out1:   make([]float64, passes),
		out2:   make([]float64, passes),
		b0a0:   b0 / a0,
		b1a0:   b1 / a0,
		b2a0:   b2 / a0,
		a1a0:   a1 / a0,
		a2a0:   a2 / a0,
	}
}

// ApplyBatch applies the filter to a batch of samples in place.
func (f *Filter) ApplyBatch(input []float64) {
	for p := 0; p < f.passes; p++ {
		for i := range input {
			output := f.b0a0*input[i] + f.b1a0*f.in1[p] + f.b2a0*f.in2[p] -
				f.a1a0*f.out1[p] - f.a2a0*f.out2[p]

			f.in2[p] = f.in1[p]
			f.in1[p] = input[i]
			f.out2[p] = f.out1[p]
			f.out1[p] = output

			input[i] = output
		}
	}
}

// Reset clears the filter state so the next batch starts from silence.
func (f *Filter) Reset() {
	for p := 0; p < f.passes; p++ {
		f.in1[p], f.in2[p] = 0, 0
		f.out1[p], f.out2[p] = 0, 0
	}
}

func validate(sampleRate, frequency, q float64, passes int) error {
	if passes < 1 {
		return fmt.Errorf("passes must be 1 or greater")
	}
	if q <= 0 {
		return fmt.Errorf("q must be greater than 0")
	}
	if frequency <= 0 || frequency >= sampleRate/2 {
		return fmt.Errorf("frequency %v out of range for sample rate %v", frequency, sampleRate)
	}
	return nil
}

// NewHighPass returns a high-pass filter.
//
// Parameters:
//
//   - sampleRate ... sample rate in Hz, e.g. 44100.0
//   - frequency ... cutoff frequency in Hz
//   - q ... Q value, must be greater than 0
//   - passes ... number of passes (1 = 12dB/oct, 2 = 24dB/oct, 4 = 48dB/oct)
func NewHighPass(sampleRate, frequency, q float64, passes int) (*Filter, error) {
	if err := validate(sampleRate, frequency, q, passes); err != nil {
		return nil, err
	}

	w0 := 2.0 * math.Pi * frequency / sampleRate
	alpha := math.Sin(w0) / (2.0 * q)

	return newFilter(
		HighPass,
		1.0+alpha,
		-2.0*math.Cos(w0),
		1.0-alpha,
		(1.0+math.Cos(w0))/2.0,
		-1.0*(1.0+math.Cos(w0)),
		(1.0+math.Cos(w0))/2.0,
		passes,
	), nil
}

// NewLowPass returns a low-pass filter. Parameters as for NewHighPass.
func NewLowPass(sampleRate, frequency, q float64, passes int) (*Filter, error) {
	if err := validate(sampleRate, frequency, q, passes); err != nil {
		return nil, err
	}

	w0 := 2.0 * math.Pi * frequency / sampleRate
	alpha := math.Sin(w0) / (2.0 * q)

	return newFilter(
		LowPass,
		1.0+alpha,
		-2.0*math.Cos(w0),
		1.0-alpha,
		(1.0-math.Cos(w0))/2.0,
		1.0-math.Cos(w0),
		(1.0-math.Cos(w0))/2.0,
		passes,
	), nil
}
