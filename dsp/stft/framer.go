package stft

import "github.com/cwbudde/algo-harmonizer/dsp/window"

// Framer pairs one Analyzer with one Synthesizer.
type Framer struct {
	shape window.Type

	analyzer    *Analyzer
	synthesizer *Synthesizer
	frame       []float64
}

// NewFramer returns a framer for the given configuration. See [Validate]
// for the accepted values.
func NewFramer(transformSize, hopSize int, shape window.Type) (*Framer, error) {
	f := &Framer{}
	if err := f.Configure(transformSize, hopSize, shape); err != nil {
		return nil, err
	}

	return f, nil
}

// Configure replaces the framing configuration and clears all state. On
// error the previous configuration is kept. Configure allocates and must
// not be called from the audio goroutine.
func (f *Framer) Configure(transformSize, hopSize int, shape window.Type) error {
	a, err := NewAnalyzer(transformSize, hopSize, shape)
	if err != nil {
		return err
	}

	s, err := NewSynthesizer(transformSize, hopSize, shape)
	if err != nil {
		return err
	}

	f.shape = shape
	f.analyzer = a
	f.synthesizer = s
	f.frame = make([]float64, transformSize)

	return nil
}

// TransformSize returns the frame length.
func (f *Framer) TransformSize() int { return f.analyzer.size }

// HopSize returns the number of samples between frames.
func (f *Framer) HopSize() int { return f.analyzer.hop }

// Window returns the analysis and synthesis window shape.
func (f *Framer) Window() window.Type { return f.shape }

// Latency returns the delay in samples between input and reconstructed
// output, which equals the transform size.
func (f *Framer) Latency() int { return f.analyzer.size }

// PushSamples forwards to [Analyzer.PushSamples].
func (f *Framer) PushSamples(block []float64) int { return f.analyzer.PushSamples(block) }

// NextAnalysisFrame forwards to [Analyzer.NextAnalysisFrame].
func (f *Framer) NextAnalysisFrame(dst []float64) bool { return f.analyzer.NextAnalysisFrame(dst) }

// AccumulateSynthesisFrame forwards to [Synthesizer.AccumulateSynthesisFrame].
func (f *Framer) AccumulateSynthesisFrame(frame []float64) {
	f.synthesizer.AccumulateSynthesisFrame(frame)
}

// PullSamples forwards to [Synthesizer.PullSamples].
func (f *Framer) PullSamples(dst []float64) int { return f.synthesizer.PullSamples(dst) }

// Process streams in through the framer, calling fn on every analysis frame
// before it is overlap-added back, and writes len(in) output samples to out.
// fn may modify the frame in place; a nil fn passes frames through.
func (f *Framer) Process(in, out []float64, fn func(frame []float64)) {
	n := min(len(in), len(out))

	for pos := 0; pos < n; {
		m := f.analyzer.PushSamples(in[pos:n])
		f.synthesizer.PullSamples(out[pos : pos+m])
		pos += m

		if f.analyzer.NextAnalysisFrame(f.frame) {
			if fn != nil {
				fn(f.frame)
			}

			f.synthesizer.AccumulateSynthesisFrame(f.frame)
		}
	}
}

// Reset clears buffered input and output.
func (f *Framer) Reset() {
	f.analyzer.Reset()
	f.synthesizer.Reset()
}
