package core

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// IsFinitePositive reports whether x is finite and > 0.
func IsFinitePositive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}

// IsPowerOfTwo reports whether v is a positive power of two.
func IsPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// Sanitize returns x, or 0 when x is NaN or infinite.
func Sanitize(x float64) float64 {
	if IsFinite(x) {
		return x
	}

	return 0
}

// OrDefault returns x when it is finite, otherwise def.
func OrDefault(x, def float64) float64 {
	if IsFinite(x) {
		return x
	}

	return def
}

// SanitizeBlock replaces NaN and infinite samples in buf with 0 and returns
// the number of replaced samples.
func SanitizeBlock(buf []float64) int {
	n := 0

	for i, v := range buf {
		if !IsFinite(v) {
			buf[i] = 0
			n++
		}
	}

	return n
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// SemitonesToRatio converts a pitch offset in semitones to a frequency ratio.
func SemitonesToRatio(semitones float64) float64 {
	return math.Exp2(semitones / 12)
}

// RatioToSemitones converts a frequency ratio to a pitch offset in semitones.
func RatioToSemitones(ratio float64) float64 {
	return 12 * math.Log2(ratio)
}
