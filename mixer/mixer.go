// Package mixer averages multiple signals into a single one.
package mixer

import "github.com/dudk/rack"

// Inputs is the number of mixer inputs.
const Inputs = 8

// Mixer outputs the mean of its connected inputs. Disconnected inputs
// don't count. If no input is connected, mixer outputs zero.
type Mixer struct{}

// New returns new mixer.
func New() *Mixer {
	return &Mixer{}
}

// Inputs returns the number of mixer inputs.
func (*Mixer) Inputs() int { return Inputs }

// Outputs returns 1.
func (*Mixer) Outputs() int { return 1 }

// Run mixes inputs.
func (*Mixer) Run(in []rack.Input, out []rack.Output) {
	var (
		sum     float32
		signals int
	)
	for i := range in {
		if in[i].IsConnected() {
			sum += in[i].Get()
			signals++
		}
	}
	if signals == 0 {
		out[0].Set(0)
		return
	}
	out[0].Set(sum / float32(signals))
}
