package osc

import (
	"math"

	"github.com/dudk/rack"
)

// Saw is a sawtooth VCO in range [-1, 1). It has one pitch input and one
// output.
type Saw struct {
	sampleRate float64
	phase      float64
}

// NewSaw returns a sawtooth oscillator for the sample rate.
func NewSaw(sampleRate int) *Saw {
	return &Saw{sampleRate: float64(sampleRate)}
}

// Inputs returns 1.
func (*Saw) Inputs() int { return 1 }

// Outputs returns 1.
func (*Saw) Outputs() int { return 1 }

// Run writes next sample.
func (s *Saw) Run(in []rack.Input, out []rack.Output) {
	out[0].Set(float32(2*s.phase - 1))
	s.phase += frequency(in[0].Get()) / s.sampleRate
	s.phase -= math.Floor(s.phase)
}
