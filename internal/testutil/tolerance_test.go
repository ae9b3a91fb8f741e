package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	d, err := MaxAbsDiff([]float64{1, 2, 3}, []float64{1, 2.1, 3})
	if err != nil {
		t.Fatalf("MaxAbsDiff() error = %v", err)
	}

	if math.Abs(d-0.1) > 1e-15 {
		t.Fatalf("MaxAbsDiff() = %v, want 0.1", d)
	}

	if _, err := MaxAbsDiff([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatal("MaxAbsDiff() expected error for length mismatch")
	}
}

func TestCents(t *testing.T) {
	tests := []struct {
		got, want float64
		cents     float64
	}{
		{got: 440, want: 440, cents: 0},
		{got: 880, want: 440, cents: 1200},
		{got: 261.6256, want: 277.1826, cents: -100},
		{got: 523.25 + 3, want: 523.25, cents: 9.8975},
	}

	for _, tt := range tests {
		if got := Cents(tt.got, tt.want); math.Abs(got-tt.cents) > 0.01 {
			t.Fatalf("Cents(%v, %v) = %v, want %v", tt.got, tt.want, got, tt.cents)
		}
	}

	if !math.IsNaN(Cents(0, 440)) {
		t.Fatal("Cents(0, 440) expected NaN")
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(DC(-0.5, 100)); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("RMS() = %v, want 0.5", got)
	}

	sine := DeterministicSine(100, 48000, 1, 4800)
	if got := RMS(sine); math.Abs(got-1/math.Sqrt2) > 1e-6 {
		t.Fatalf("RMS(sine) = %v, want %v", got, 1/math.Sqrt2)
	}

	if got := RMSDiff(sine, sine); got != 0 {
		t.Fatalf("RMSDiff(x, x) = %v, want 0", got)
	}

	if got := RMS(nil); got != 0 {
		t.Fatalf("RMS(nil) = %v, want 0", got)
	}
}
