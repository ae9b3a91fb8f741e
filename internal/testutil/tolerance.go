package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or any
// pair differs by more than eps.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()

	d, err := MaxAbsDiff(got, want)
	if err != nil {
		t.Fatal(err)
	}

	if d <= eps {
		return
	}

	for i := range got {
		if math.Abs(got[i]-want[i]) > eps {
			t.Fatalf("index %d: got %v, want %v (eps %v)", i, got[i], want[i], eps)
		}
	}
}

// RequireFinite fails t on the first NaN or Inf in data.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()

	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireFrequencyNear fails t if got is more than cents away from want.
func RequireFrequencyNear(t *testing.T, got, want, cents float64) {
	t.Helper()

	if d := Cents(got, want); !(math.Abs(d) <= cents) {
		t.Fatalf("frequency = %.3f Hz, want %.3f Hz within %v cents (off by %.2f)", got, want, cents, d)
	}
}

// Cents returns the pitch distance from want to got in cents. It is NaN
// unless both are positive.
func Cents(got, want float64) float64 {
	if !(got > 0 && want > 0) {
		return math.NaN()
	}

	return 1200 * math.Log2(got/want)
}

// MaxAbsDiff returns the largest absolute difference between a and b.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}

	maxDiff := 0.0
	for i := range a {
		maxDiff = max(maxDiff, math.Abs(a[i]-b[i]))
	}

	return maxDiff, nil
}

// RMS returns the root mean square of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range x {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(x)))
}

// RMSDiff returns the RMS of a-b over their common length.
func RMSDiff(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}

	sum := 0.0
	for i := range n {
		d := a[i] - b[i]
		sum += d * d
	}

	return math.Sqrt(sum / float64(n))
}
