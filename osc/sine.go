package osc

import (
	"math"

	"github.com/dudk/rack"
)

// Sine generates a sine wave from a phase accumulator. It has one pitch
// input and one output.
type Sine struct {
	sampleRate float64
	phase      float64 // in [0, 2π).
}

// NewSine returns a sine oscillator for the sample rate.
func NewSine(sampleRate int) *Sine {
	return &Sine{sampleRate: float64(sampleRate)}
}

// Inputs returns 1.
func (*Sine) Inputs() int { return 1 }

// Outputs returns 1.
func (*Sine) Outputs() int { return 1 }

// Run advances the phase and writes next sample.
func (s *Sine) Run(in []rack.Input, out []rack.Output) {
	s.phase += 2 * math.Pi * frequency(in[0].Get()) / s.sampleRate
	s.phase = math.Mod(s.phase, 2*math.Pi)
	out[0].Set(float32(math.Sin(s.phase)))
}
