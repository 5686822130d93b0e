package osc_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/rack"
	"github.com/dudk/rack/osc"
)

// run module n times with single input fixed to pitch.
func run(m rack.Module, pitch float32, n int) []float32 {
	var p rack.Output
	p.Set(pitch)
	in := make([]rack.Input, m.Inputs())
	if len(in) > 0 {
		in[0].ConnectTo(&p)
	}
	out := make([]rack.Output, m.Outputs())
	result := make([]float32, n)
	for i := range result {
		m.Run(in, out)
		result[i] = out[0].Get()
	}
	return result
}

func TestSine(t *testing.T) {
	tests := []struct {
		pitch float32
		hz    float64
	}{
		{pitch: 0, hz: 440},
		{pitch: 1, hz: 880},
		{pitch: -1, hz: 220},
	}
	for _, test := range tests {
		samples := run(osc.NewSine(rack.DefaultSampleRate), test.pitch, 1000)
		step := 2 * math.Pi * test.hz / rack.DefaultSampleRate
		for i, v := range samples {
			assert.InDelta(t, math.Sin(float64(i+1)*step), v, 1e-3, "pitch %v sample %d", test.pitch, i)
		}
	}
}

func TestSineStable(t *testing.T) {
	for _, pitch := range []float32{-2, 0, 0.25, 1, 3} {
		samples := run(osc.NewSine(rack.DefaultSampleRate), pitch, 10*rack.DefaultSampleRate)
		step := 2 * math.Pi * osc.A4 * math.Pow(2, float64(pitch)) / rack.DefaultSampleRate
		for i, v := range samples {
			if !assert.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0), "pitch %v sample %d", pitch, i) {
				return
			}
			if !assert.True(t, v >= -1 && v <= 1, "pitch %v sample %d: %v", pitch, i, v) {
				return
			}
		}
		// long runs stay in phase
		for _, i := range []int{60, 188, 44099, 10*rack.DefaultSampleRate - 1} {
			assert.InDelta(t, math.Sin(float64(i+1)*step), samples[i], 1e-3, "pitch %v sample %d", pitch, i)
		}
	}
}

func TestSaw(t *testing.T) {
	// 4410 Hz is exactly 10 samples per period.
	pitch := float32(math.Log2(4410.0 / osc.A4))
	samples := run(osc.NewSaw(rack.DefaultSampleRate), pitch, 20)
	assert.InDelta(t, -1, samples[0], 1e-6)
	assert.InDelta(t, -0.8, samples[1], 1e-4)
	assert.InDelta(t, 0, samples[5], 1e-4)
	assert.InDelta(t, 0.8, samples[9], 1e-4)
	assert.InDelta(t, 0, samples[15], 1e-4)
	for _, v := range samples {
		assert.True(t, v >= -1 && v <= 1)
	}
}

func TestConst(t *testing.T) {
	assert.Equal(t, []float32{0.25, 0.25, 0.25}, run(osc.Const(0.25), 0, 3))
	assert.Equal(t, 0, osc.Const(0).Inputs())
}
