// Package osc provides signal sources.
//
// Pitch inputs are in octaves relative to A4: 0 is 440 Hz, 1 is 880 Hz and
// -1 is 220 Hz.
package osc

import "math"

// A4 is the frequency of zero pitch.
const A4 = 440.0

// frequency converts pitch to Hz.
func frequency(pitch float32) float64 {
	return A4 * math.Pow(2, float64(pitch))
}
