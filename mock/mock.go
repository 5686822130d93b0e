// Package mock provides modules for testing engines.
package mock

import "github.com/dudk/rack"

type (
	// Counter outputs the number of times it has run: 1 on first tick, 2 on
	// second and so on.
	Counter struct {
		Runs int
	}

	// Probe passes input to output and remembers the last value it read.
	Probe struct {
		Runs int
		Last float32
	}

	// Increment outputs its input plus one. Wired to itself it counts ticks
	// one tick behind.
	Increment struct{}

	// Module has arbitrary number of ports and writes Value to every output.
	Module struct {
		In, Out int
		Value   float32
		Runs    int
	}
)

// Inputs returns 0.
func (*Counter) Inputs() int { return 0 }

// Outputs returns 1.
func (*Counter) Outputs() int { return 1 }

// Run increments counter.
func (c *Counter) Run(_ []rack.Input, out []rack.Output) {
	c.Runs++
	out[0].Set(float32(c.Runs))
}

// Inputs returns 1.
func (*Probe) Inputs() int { return 1 }

// Outputs returns 1.
func (*Probe) Outputs() int { return 1 }

// Run reads the input.
func (p *Probe) Run(in []rack.Input, out []rack.Output) {
	p.Runs++
	p.Last = in[0].Get()
	out[0].Set(p.Last)
}

// Inputs returns 1.
func (Increment) Inputs() int { return 1 }

// Outputs returns 1.
func (Increment) Outputs() int { return 1 }

// Run adds one to input.
func (Increment) Run(in []rack.Input, out []rack.Output) {
	out[0].Set(in[0].Get() + 1)
}

// Inputs returns the number of inputs.
func (m *Module) Inputs() int { return m.In }

// Outputs returns the number of outputs.
func (m *Module) Outputs() int { return m.Out }

// Run writes value to outputs.
func (m *Module) Run(_ []rack.Input, out []rack.Output) {
	m.Runs++
	for i := range out {
		out[i].Set(m.Value)
	}
}
