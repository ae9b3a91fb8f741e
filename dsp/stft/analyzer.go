package stft

import (
	"github.com/cwbudde/algo-harmonizer/dsp/core"
	"github.com/cwbudde/algo-harmonizer/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

// Analyzer turns a continuous input stream into windowed analysis frames,
// one per hop.
type Analyzer struct {
	size int
	hop  int
	win  []float64

	ring    []float64
	pos     int
	pending int
	ready   bool

	sanitized int
}

// NewAnalyzer returns an analyzer for the given framing configuration.
func NewAnalyzer(transformSize, hopSize int, shape window.Type) (*Analyzer, error) {
	win, _, err := Validate(transformSize, hopSize, shape)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		size: transformSize,
		hop:  hopSize,
		win:  win,
		ring: make([]float64, transformSize),
	}, nil
}

// TransformSize returns the frame length.
func (a *Analyzer) TransformSize() int { return a.size }

// HopSize returns the number of samples between frames.
func (a *Analyzer) HopSize() int { return a.hop }

// PushSamples copies samples from block into the input buffer, stopping at
// the next hop boundary, and returns how many were consumed. While a frame
// is ready and not yet taken with NextAnalysisFrame nothing is consumed.
// NaN and Inf samples are stored as zero.
func (a *Analyzer) PushSamples(block []float64) int {
	if a.ready {
		return 0
	}

	n := min(len(block), a.hop-a.pending)
	for _, x := range block[:n] {
		if !core.IsFinite(x) {
			x = 0
			a.sanitized++
		}

		a.ring[a.pos] = x
		a.pos++

		if a.pos == a.size {
			a.pos = 0
		}
	}

	a.pending += n
	if a.pending == a.hop {
		a.pending = 0
		a.ready = true
	}

	return n
}

// NextAnalysisFrame writes the most recent TransformSize input samples,
// multiplied by the analysis window, into dst and returns true when a hop
// boundary has been reached since the last call. Otherwise it returns false
// and leaves dst untouched. dst must hold TransformSize samples.
func (a *Analyzer) NextAnalysisFrame(dst []float64) bool {
	if !a.ready {
		return false
	}

	a.ready = false
	a.Latest(dst[:a.size])
	vecmath.MulBlockInPlace(dst[:a.size], a.win)

	return true
}

// Latest copies the most recent len(dst) input samples, oldest first and
// unwindowed, into dst. len(dst) must not exceed TransformSize.
func (a *Analyzer) Latest(dst []float64) {
	n := len(dst)
	start := a.pos - n
	if start < 0 {
		start += a.size
	}

	first := copy(dst, a.ring[start:min(start+n, a.size)])
	copy(dst[first:], a.ring[:n-first])
}

// TakeSanitized returns the number of non-finite samples replaced since the
// previous call and resets the count.
func (a *Analyzer) TakeSanitized() int {
	n := a.sanitized
	a.sanitized = 0

	return n
}

// Reset clears buffered input.
func (a *Analyzer) Reset() {
	core.Zero(a.ring)
	a.pos = 0
	a.pending = 0
	a.ready = false
	a.sanitized = 0
}
