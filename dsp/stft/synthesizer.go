package stft

import (
	"github.com/cwbudde/algo-harmonizer/dsp/core"
	"github.com/cwbudde/algo-harmonizer/dsp/window"
)

// Synthesizer overlap-adds processed frames into a continuous output
// stream.
type Synthesizer struct {
	size int
	hop  int
	win  []float64
	norm float64

	acc []float64

	// out is a FIFO of finished samples.
	out     []float64
	readPos int
	avail   int
}

// NewSynthesizer returns a synthesizer for the given framing configuration.
func NewSynthesizer(transformSize, hopSize int, shape window.Type) (*Synthesizer, error) {
	win, gain, err := Validate(transformSize, hopSize, shape)
	if err != nil {
		return nil, err
	}

	return &Synthesizer{
		size: transformSize,
		hop:  hopSize,
		win:  win,
		norm: 1 / gain,
		acc:  make([]float64, transformSize),
		out:  make([]float64, transformSize),
	}, nil
}

// AccumulateSynthesisFrame applies the synthesis window and the overlap-add
// normalisation to frame, adds it into the accumulator, and moves the
// oldest hop, now complete, to the output FIFO. frame must hold
// TransformSize samples and is not modified.
//
// If the FIFO is full the oldest unread samples are dropped.
func (s *Synthesizer) AccumulateSynthesisFrame(frame []float64) {
	for i, x := range frame[:s.size] {
		s.acc[i] += x * s.win[i] * s.norm
	}

	capacity := len(s.out)
	for i := range s.hop {
		if s.avail == capacity {
			s.readPos = (s.readPos + 1) % capacity
			s.avail--
		}

		s.out[(s.readPos+s.avail)%capacity] = core.FlushDenormals(s.acc[i])
		s.avail++
	}

	copy(s.acc, s.acc[s.hop:])
	core.Zero(s.acc[s.size-s.hop:])
}

// PullSamples fills dst with finished output and returns how many samples
// came from the FIFO. The remainder of dst is filled with silence.
func (s *Synthesizer) PullSamples(dst []float64) int {
	n := min(len(dst), s.avail)
	capacity := len(s.out)

	for i := range n {
		dst[i] = s.out[s.readPos]
		s.readPos++

		if s.readPos == capacity {
			s.readPos = 0
		}
	}

	s.avail -= n
	core.Zero(dst[n:])

	return n
}

// Available returns the number of finished samples waiting in the FIFO.
func (s *Synthesizer) Available() int { return s.avail }

// Reset clears the accumulator and the output FIFO.
func (s *Synthesizer) Reset() {
	core.Zero(s.acc)
	core.Zero(s.out)
	s.readPos = 0
	s.avail = 0
}
