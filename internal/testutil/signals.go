package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine at freqHz starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	return HarmonicTone(freqHz, sampleRate, []float64{amplitude}, length)
}

// HarmonicTone sums sines at multiples of f0. amplitudes[k] is the level of
// harmonic k+1; partials at or above Nyquist are skipped.
func HarmonicTone(f0, sampleRate float64, amplitudes []float64, length int) []float64 {
	out := make([]float64, length)

	for k, amp := range amplitudes {
		f := f0 * float64(k+1)
		if amp == 0 || f >= sampleRate/2 {
			continue
		}

		step := 2 * math.Pi * f / sampleRate
		for i := range out {
			out[i] += amp * math.Sin(step*float64(i))
		}
	}

	return out
}

// VoicedTone is a band-limited sawtooth at f0: n harmonics with 1/k
// levels, scaled so the fundamental has the given amplitude. It stands in
// for a sung or played note with a falling spectral envelope.
func VoicedTone(f0, sampleRate, amplitude float64, harmonics, length int) []float64 {
	amps := make([]float64, harmonics)
	for k := range amps {
		amps[k] = amplitude / float64(k+1)
	}

	return HarmonicTone(f0, sampleRate, amps, length)
}

// DeterministicNoise generates white noise with a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// Impulse returns length samples with a unit impulse at pos.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// DC returns length samples of value.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}

// Ones returns n samples of 1. Tests use it to see whether an output
// buffer was overwritten.
func Ones(n int) []float64 {
	return DC(1, n)
}
