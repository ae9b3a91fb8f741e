package spectrum

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Transform converts between real time frames and [Frame]s of one size.
// It owns its FFT plan and scratch memory and is not safe for concurrent
// use.
type Transform struct {
	size    int
	plan    *algofft.Plan[complex128]
	spec    []complex128
	timeBuf []complex128
}

// NewTransform returns a transform for frames of size samples, which must
// be a power of two >= 4.
func NewTransform(size int) (*Transform, error) {
	if size < 4 || size&(size-1) != 0 {
		return nil, fmt.Errorf("spectrum transform size must be a power of two >= 4: %d", size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum transform: failed to create FFT plan: %w", err)
	}

	return &Transform{
		size:    size,
		plan:    plan,
		spec:    make([]complex128, size),
		timeBuf: make([]complex128, size),
	}, nil
}

// Size returns the frame length in samples.
func (t *Transform) Size() int { return t.size }

// Forward analyses the real frame src into dst.
func (t *Transform) Forward(src []float64, dst *Frame) error {
	if len(src) != t.size || dst.Size != t.size {
		return fmt.Errorf("spectrum transform: frame length must be %d: %d", t.size, len(src))
	}

	for i, x := range src {
		t.spec[i] = complex(x, 0)
	}

	if err := t.plan.Forward(t.spec, t.spec); err != nil {
		return fmt.Errorf("spectrum transform: forward FFT failed: %w", err)
	}

	dst.FromComplex(t.spec)

	return nil
}

// Inverse synthesizes the real frame of src into dst.
func (t *Transform) Inverse(src *Frame, dst []float64) error {
	if len(dst) != t.size || src.Size != t.size {
		return fmt.Errorf("spectrum transform: frame length must be %d: %d", t.size, len(dst))
	}

	src.ToComplex(t.spec)

	if err := t.plan.Inverse(t.timeBuf, t.spec); err != nil {
		return fmt.Errorf("spectrum transform: inverse FFT failed: %w", err)
	}

	for i := range dst {
		dst[i] = real(t.timeBuf[i])
	}

	return nil
}
