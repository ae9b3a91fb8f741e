package spectrum

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestNewFrame(t *testing.T) {
	tests := []struct {
		size    int
		wantErr bool
	}{
		{size: 4},
		{size: 2048},
		{size: 0, wantErr: true},
		{size: 2, wantErr: true},
		{size: 1000, wantErr: true},
	}

	for _, tt := range tests {
		f, err := NewFrame(tt.size)
		if (err != nil) != tt.wantErr {
			t.Fatalf("NewFrame(%d) error = %v, wantErr %v", tt.size, err, tt.wantErr)
		}

		if tt.wantErr {
			continue
		}

		if f.Bins() != tt.size/2+1 {
			t.Fatalf("Bins() = %d, want %d", f.Bins(), tt.size/2+1)
		}
	}
}

func TestFrameComplexRoundTrip(t *testing.T) {
	const size = 16

	f, err := NewFrame(size)
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}

	in := make([]complex128, size)
	in[0] = 3
	in[size/2] = -1

	for k := 1; k < size/2; k++ {
		v := complex(float64(k), -0.5*float64(k*k))
		in[k] = v
		in[size-k] = cmplx.Conj(v)
	}

	f.FromComplex(in)

	for k := range f.Bins() {
		if f.Mag[k] < 0 {
			t.Fatalf("Mag[%d] = %v, want >= 0", k, f.Mag[k])
		}

		if math.Abs(f.Mag[k]-cmplx.Abs(in[k])) > 1e-12 {
			t.Fatalf("Mag[%d] = %v, want %v", k, f.Mag[k], cmplx.Abs(in[k]))
		}

		rebuilt := cmplx.Rect(f.Mag[k], f.Phase[k])
		if cmplx.Abs(rebuilt-in[k]) > 1e-12 {
			t.Fatalf("bin %d polar form %v, want %v", k, rebuilt, in[k])
		}
	}

	out := make([]complex128, size)
	f.ToComplex(out)

	for k := range out {
		if cmplx.Abs(out[k]-in[k]) > 1e-12 {
			t.Fatalf("ToComplex()[%d] = %v, want %v", k, out[k], in[k])
		}
	}
}

func TestFrameSetPolarAndScale(t *testing.T) {
	f, _ := NewFrame(8)

	f.SetPolar(2, 2, math.Pi/3)
	f.ScaleBin(2, 0.5)

	if math.Abs(f.Mag[2]-1) > 1e-15 {
		t.Fatalf("Mag[2] = %v, want 1", f.Mag[2])
	}

	if math.Abs(f.Re[2]-0.5) > 1e-12 || math.Abs(f.Im[2]-math.Sqrt(3)/2) > 1e-12 {
		t.Fatalf("bin 2 = (%v, %v), want (0.5, %v)", f.Re[2], f.Im[2], math.Sqrt(3)/2)
	}

	g, _ := NewFrame(8)
	g.CopyFrom(f)

	if g.Phase[2] != f.Phase[2] || g.Re[2] != f.Re[2] {
		t.Fatal("CopyFrom() did not copy bin 2")
	}

	g.Reset()

	for k := range g.Bins() {
		if g.Mag[k] != 0 || g.Re[k] != 0 || g.Im[k] != 0 || g.Phase[k] != 0 {
			t.Fatalf("bin %d not cleared by Reset()", k)
		}
	}
}

func TestFlux(t *testing.T) {
	prev := []float64{1, 2, 3, 4}
	cur := []float64{2, 1, 3, 6}

	if got := Flux(prev, cur); got != 3 {
		t.Fatalf("Flux() = %v, want 3", got)
	}

	if got := Flux(cur, cur); got != 0 {
		t.Fatalf("Flux() of identical spectra = %v, want 0", got)
	}
}

func TestMagnitude(t *testing.T) {
	got := Magnitude([]complex128{3 + 4i, -1, 0})
	want := []float64{5, 1, 0}

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("Magnitude()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if Magnitude(nil) != nil {
		t.Fatal("Magnitude(nil) should return nil")
	}
}
