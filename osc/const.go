package osc

import "github.com/dudk/rack"

// Const always writes the same value. It has no inputs and one output.
type Const float32

// Inputs returns 0.
func (Const) Inputs() int { return 0 }

// Outputs returns 1.
func (Const) Outputs() int { return 1 }

// Run writes the value.
func (c Const) Run(_ []rack.Input, out []rack.Output) {
	out[0].Set(float32(c))
}
