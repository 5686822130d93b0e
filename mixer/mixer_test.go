package mixer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/rack"
	"github.com/dudk/rack/mixer"
)

func TestMixer(t *testing.T) {
	tests := []struct {
		description string
		values      []float32 // values of connected inputs.
		expected    float32
	}{
		{
			description: "no inputs",
			expected:    0,
		},
		{
			description: "single input",
			values:      []float32{0.5},
			expected:    0.5,
		},
		{
			description: "two inputs",
			values:      []float32{0.7, 0.5},
			expected:    0.6,
		},
		{
			description: "connected zero counts",
			values:      []float32{1, 0, 0, 0},
			expected:    0.25,
		},
		{
			description: "all inputs",
			values:      []float32{1, 1, 1, 1, -1, -1, -1, -1},
			expected:    0,
		},
	}

	for _, test := range tests {
		m := mixer.New()
		sources := make([]rack.Output, len(test.values))
		inputs := make([]rack.Input, m.Inputs())
		outputs := make([]rack.Output, m.Outputs())
		for i, v := range test.values {
			sources[i].Set(v)
			inputs[i].ConnectTo(&sources[i])
		}
		m.Run(inputs, outputs)
		assert.InDelta(t, test.expected, outputs[0].Get(), 1e-6, test.description)
	}
}

func TestMixerSkipsGaps(t *testing.T) {
	m := mixer.New()
	inputs := make([]rack.Input, m.Inputs())
	outputs := make([]rack.Output, m.Outputs())
	var a, b rack.Output
	a.Set(0.2)
	b.Set(0.4)
	inputs[1].ConnectTo(&a)
	inputs[6].ConnectTo(&b)
	m.Run(inputs, outputs)
	assert.InDelta(t, 0.3, outputs[0].Get(), 1e-6)

	inputs[6].Disconnect()
	m.Run(inputs, outputs)
	assert.InDelta(t, 0.2, outputs[0].Get(), 1e-6)
}
