// Package amp provides amplifiers.
package amp

import "github.com/dudk/rack"

// VCA multiplies signal input 0 by control input 1.
type VCA struct{}

// NewVCA returns new amplifier.
func NewVCA() *VCA {
	return &VCA{}
}

// Inputs returns 2.
func (*VCA) Inputs() int { return 2 }

// Outputs returns 1.
func (*VCA) Outputs() int { return 1 }

// Run writes the product of inputs.
func (*VCA) Run(in []rack.Input, out []rack.Output) {
	out[0].Set(in[0].Get() * in[1].Get())
}
