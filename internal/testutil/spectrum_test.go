package testutil

import "testing"

func TestDominantFrequency(t *testing.T) {
	for _, f := range []float64{110, 441.3, 1234.5} {
		x := DeterministicSine(f, 48000, 0.5, 8192)
		RequireFrequencyNear(t, DominantFrequency(x, 48000), f, 15)
	}
}
