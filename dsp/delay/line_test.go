package delay

import (
	"math"
	"testing"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size=0")
	}

	if _, err := New(-1); err == nil {
		t.Fatal("expected error for size=-1")
	}

	d, err := New(16)
	if err != nil {
		t.Fatal(err)
	}

	if d.Len() != 16 {
		t.Fatalf("Len: got %d want 16", d.Len())
	}
}

func TestReadWrite(t *testing.T) {
	d, _ := New(8)

	for i := range 8 {
		d.Write(float64(i))
	}

	// delay=0 => most recently written (7)
	if got := d.Read(0); got != 7 {
		t.Fatalf("got %v want 7", got)
	}

	if got := d.Read(3); got != 4 {
		t.Fatalf("got %v want 4", got)
	}

	if got := d.Read(7); got != 0 {
		t.Fatalf("oldest: got %v want 0", got)
	}

	if got := d.Read(100); got != 0 {
		t.Fatalf("clamped read: got %v want 0", got)
	}
}

func TestReadWraparound(t *testing.T) {
	d, _ := New(4)

	for i := range 10 {
		d.Write(float64(i))
	}

	for delay, want := range []float64{9, 8, 7, 6} {
		if got := d.Read(delay); got != want {
			t.Fatalf("Read(%d) = %v, want %v", delay, got, want)
		}
	}
}

func TestReadFractional(t *testing.T) {
	d, _ := New(32)

	// Linear ramp: Hermite reproduces it exactly.
	for i := range 32 {
		d.Write(float64(i))
	}

	for _, delay := range []float64{0, 0.25, 0.5, 0.75, 1.5, 2.25, 10.75, 28.9} {
		want := 31 - delay
		if got := d.ReadFractional(delay); math.Abs(got-want) > 1e-12 {
			t.Fatalf("ReadFractional(%v) = %v, want %v", delay, got, want)
		}
	}

	if got := d.ReadFractional(math.NaN()); got != 31 {
		t.Fatalf("ReadFractional(NaN) = %v, want 31", got)
	}
}

func TestProcessSubSampleDelay(t *testing.T) {
	d, _ := New(16)

	for i := range 40 {
		got := d.Process(float64(i), 0.5)
		if i < 2 {
			continue
		}

		if want := float64(i) - 0.5; math.Abs(got-want) > 1e-12 {
			t.Fatalf("Process(%d, 0.5) = %v, want %v", i, got, want)
		}
	}
}

func TestProcessDelaysImpulse(t *testing.T) {
	d, _ := New(64)

	var out []float64
	for i := range 20 {
		x := 0.0
		if i == 3 {
			x = 1
		}

		out = append(out, d.Process(x, 5))
	}

	for i, v := range out {
		want := 0.0
		if i == 8 {
			want = 1
		}

		if v != want {
			t.Fatalf("out[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestLatestAndReset(t *testing.T) {
	d, _ := New(5)

	for i := range 7 {
		d.Write(float64(i + 1))
	}

	got := make([]float64, 3)
	d.Latest(got)

	for i, want := range []float64{5, 6, 7} {
		if got[i] != want {
			t.Fatalf("Latest()[%d] = %v, want %v", i, got[i], want)
		}
	}

	d.Reset()
	d.Latest(got)

	for i, v := range got {
		if v != 0 {
			t.Fatalf("after Reset Latest()[%d] = %v", i, v)
		}
	}
}
