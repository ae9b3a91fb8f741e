package spectrum

import (
	"fmt"
	"math"
)

// Frame is the magnitude/phase representation of one analysis window of a
// real signal. All slices hold Size/2+1 bins and satisfy
// Re[k]+i*Im[k] == Mag[k]*exp(i*Phase[k]) with Mag[k] >= 0.
//
// A Frame is allocated once and overwritten every hop; it is never resized.
type Frame struct {
	Size  int
	Mag   []float64
	Phase []float64
	Re    []float64
	Im    []float64
}

// NewFrame allocates a frame for a transform of the given size, which must be
// a power of two >= 4.
func NewFrame(size int) (*Frame, error) {
	if size < 4 || size&(size-1) != 0 {
		return nil, fmt.Errorf("spectrum frame size must be a power of two >= 4: %d", size)
	}

	bins := size/2 + 1

	return &Frame{
		Size:  size,
		Mag:   make([]float64, bins),
		Phase: make([]float64, bins),
		Re:    make([]float64, bins),
		Im:    make([]float64, bins),
	}, nil
}

// Bins returns the number of non-redundant bins (Size/2+1).
func (f *Frame) Bins() int { return len(f.Mag) }

// FromComplex fills the frame from the first Bins() entries of a full
// complex spectrum.
func (f *Frame) FromComplex(spec []complex128) {
	for k := range f.Re {
		f.Re[k] = real(spec[k])
		f.Im[k] = imag(spec[k])
	}

	MagnitudeFromParts(f.Mag, f.Re, f.Im)

	for k := range f.Phase {
		f.Phase[k] = math.Atan2(f.Im[k], f.Re[k])
	}
}

// ToComplex writes the full Hermitian-symmetric spectrum of length Size into
// dst so that its inverse transform is real. DC and Nyquist imaginary parts
// are dropped.
func (f *Frame) ToComplex(dst []complex128) {
	half := f.Size / 2

	dst[0] = complex(f.Re[0], 0)
	dst[half] = complex(f.Re[half], 0)

	for k := 1; k < half; k++ {
		dst[k] = complex(f.Re[k], f.Im[k])
		dst[f.Size-k] = complex(f.Re[k], -f.Im[k])
	}
}

// SetPolar sets bin k from magnitude and phase.
func (f *Frame) SetPolar(k int, mag, phase float64) {
	s, c := math.Sincos(phase)
	f.Mag[k] = mag
	f.Phase[k] = phase
	f.Re[k] = mag * c
	f.Im[k] = mag * s
}

// ScaleBin multiplies bin k by the non-negative gain g, keeping its phase.
func (f *Frame) ScaleBin(k int, g float64) {
	f.Mag[k] *= g
	f.Re[k] *= g
	f.Im[k] *= g
}

// CopyFrom copies all bins from src, which must have the same size.
func (f *Frame) CopyFrom(src *Frame) {
	copy(f.Mag, src.Mag)
	copy(f.Phase, src.Phase)
	copy(f.Re, src.Re)
	copy(f.Im, src.Im)
}

// Reset zeroes all bins.
func (f *Frame) Reset() {
	for k := range f.Mag {
		f.Mag[k] = 0
		f.Phase[k] = 0
		f.Re[k] = 0
		f.Im[k] = 0
	}
}
