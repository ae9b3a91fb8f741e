package pitch

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-harmonizer/dsp/core"
	"github.com/cwbudde/algo-harmonizer/dsp/spectrum"
)

const (
	// MinPitchRatio is the lowest supported pitch ratio (two octaves down).
	MinPitchRatio = 0.25
	// MaxPitchRatio is the highest supported pitch ratio (two octaves up).
	MaxPitchRatio = 4.0

	minVocoderFrameSize = 64

	defaultTransientSensitivity = 2.0
	defaultFluxSmoothing        = 0.9

	// transientMinFlux is the flux, relative to the frame's total
	// magnitude, below which a hop is never marked transient.
	transientMinFlux = 0.1
)

// VocoderOption configures a PhaseVocoder.
type VocoderOption func(*vocoderConfig)

type vocoderConfig struct {
	phaseLocking  bool
	transients    bool
	sensitivity   float64
	fluxSmoothing float64
}

// WithPhaseLocking enables or disables identity phase locking. Without it
// every bin accumulates its own phase.
func WithPhaseLocking(enabled bool) VocoderOption {
	return func(c *vocoderConfig) { c.phaseLocking = enabled }
}

// WithTransientDetection enables or disables the phase reset on transient
// hops.
func WithTransientDetection(enabled bool) VocoderOption {
	return func(c *vocoderConfig) { c.transients = enabled }
}

// WithTransientSensitivity sets how far the spectral flux must exceed its
// running average to mark a hop transient. Values <= 1 are ignored.
func WithTransientSensitivity(v float64) VocoderOption {
	return func(c *vocoderConfig) {
		if core.IsFinite(v) && v > 1 {
			c.sensitivity = v
		}
	}
}

// WithFluxSmoothing sets the one-pole coefficient of the running flux
// average, in [0, 1).
func WithFluxSmoothing(alpha float64) VocoderOption {
	return func(c *vocoderConfig) {
		if core.IsFinite(alpha) && alpha >= 0 && alpha < 1 {
			c.fluxSmoothing = alpha
		}
	}
}

// PhaseVocoder shifts the pitch of a stream of spectral frames by bin
// remapping with identity phase locking (Laroche & Dolson 1999) and a phase
// reset on transients.
//
// Frames must arrive at a constant hop. A PhaseVocoder owns all of its
// phase state and is not safe for concurrent use; every voice needs its own
// instance.
type PhaseVocoder struct {
	frameSize int
	hop       int
	cfg       vocoderConfig
	ratio     float64

	transform *spectrum.Transform
	analysis  *spectrum.Frame
	shifted  *spectrum.Frame

	// omega[k] is the nominal frequency of bin k in radians per sample.
	omega     []float64
	prevPhase []float64
	instFreq  []float64
	prevMag   []float64
	fluxAvg   float64

	// Destination bins after remapping.
	dstMag   []float64
	dstFreq  []float64
	dstPhase []float64
	dstCos   []float64
	dstSin   []float64
	dstBest  []float64
	synPhase []float64
	peakBins []int
}

// NewPhaseVocoder returns a vocoder for frames of frameSize samples
// analysed every hop samples. frameSize must be a power of two >= 64 and
// hop must be in [1, frameSize/2].
func NewPhaseVocoder(frameSize, hop int, opts ...VocoderOption) (*PhaseVocoder, error) {
	if frameSize < minVocoderFrameSize || !core.IsPowerOfTwo(frameSize) {
		return nil, core.NewConfigError("phase vocoder", "frame size", frameSize, "must be a power of two >= 64")
	}

	if hop <= 0 || hop > frameSize/2 {
		return nil, core.NewConfigError("phase vocoder", "hop", hop, "must be in [1, frameSize/2]")
	}

	cfg := vocoderConfig{
		phaseLocking:  true,
		transients:    true,
		sensitivity:   defaultTransientSensitivity,
		fluxSmoothing: defaultFluxSmoothing,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	transform, err := spectrum.NewTransform(frameSize)
	if err != nil {
		return nil, fmt.Errorf("phase vocoder: %w", err)
	}

	analysis, _ := spectrum.NewFrame(frameSize)
	shifted, _ := spectrum.NewFrame(frameSize)

	bins := frameSize/2 + 1
	v := &PhaseVocoder{
		frameSize: frameSize,
		hop:       hop,
		cfg:       cfg,
		ratio:     1,
		transform: transform,
		analysis:  analysis,
		shifted:   shifted,
		omega:     make([]float64, bins),
		prevPhase: make([]float64, bins),
		instFreq:  make([]float64, bins),
		prevMag:   make([]float64, bins),
		dstMag:    make([]float64, bins),
		dstFreq:   make([]float64, bins),
		dstPhase:  make([]float64, bins),
		dstCos:    make([]float64, bins),
		dstSin:    make([]float64, bins),
		dstBest:   make([]float64, bins),
		synPhase:  make([]float64, bins),
		peakBins:  make([]int, 0, bins),
	}

	for k := range bins {
		v.omega[k] = 2 * math.Pi * float64(k) / float64(frameSize)
	}

	return v, nil
}

// FrameSize returns the transform length.
func (v *PhaseVocoder) FrameSize() int { return v.frameSize }

// Hop returns the analysis hop in samples.
func (v *PhaseVocoder) Hop() int { return v.hop }

// PitchRatio returns the current pitch ratio.
func (v *PhaseVocoder) PitchRatio() float64 { return v.ratio }

// SetPitchRatio sets the frequency ratio applied from the next frame on.
// ratio must be in [MinPitchRatio, MaxPitchRatio].
func (v *PhaseVocoder) SetPitchRatio(ratio float64) error {
	if !core.IsFinitePositive(ratio) || ratio < MinPitchRatio || ratio > MaxPitchRatio {
		return fmt.Errorf("phase vocoder: pitch ratio must be in [%g, %g]: %v", MinPitchRatio, MaxPitchRatio, ratio)
	}

	v.ratio = ratio

	return nil
}

// SetPitchSemitones sets the pitch shift in semitones.
func (v *PhaseVocoder) SetPitchSemitones(semitones float64) error {
	if !core.IsFinite(semitones) {
		return fmt.Errorf("phase vocoder: semitones must be finite: %v", semitones)
	}

	err := v.SetPitchRatio(core.SemitonesToRatio(semitones))
	if err != nil {
		return fmt.Errorf("phase vocoder: semitones out of range: %w", err)
	}

	return nil
}

// Reset clears phase and flux history, as for a new note.
func (v *PhaseVocoder) Reset() {
	core.Zero(v.prevPhase)
	core.Zero(v.prevMag)
	core.Zero(v.synPhase)
	v.fluxAvg = 0
}

// Analyze transforms a windowed time frame of FrameSize samples into dst.
func (v *PhaseVocoder) Analyze(timeFrame []float64, dst *spectrum.Frame) error {
	if err := v.transform.Forward(timeFrame, dst); err != nil {
		return fmt.Errorf("phase vocoder: %w", err)
	}

	return nil
}

// Resynthesize transforms in back to a time frame of FrameSize samples.
func (v *PhaseVocoder) Resynthesize(in *spectrum.Frame, dst []float64) error {
	if err := v.transform.Inverse(in, dst); err != nil {
		return fmt.Errorf("phase vocoder: %w", err)
	}

	return nil
}

// ProcessFrame analyses timeIn, shifts it and writes the resynthesized
// frame to timeOut. It reports whether the hop was a transient.
func (v *PhaseVocoder) ProcessFrame(timeIn, timeOut []float64) (bool, error) {
	if err := v.Analyze(timeIn, v.analysis); err != nil {
		return false, err
	}

	transient := v.Shift(v.analysis, v.shifted)

	return transient, v.Resynthesize(v.shifted, timeOut)
}

// Shift writes the pitch-shifted version of in to out and reports whether
// the hop was treated as a transient. in and out must be distinct frames of
// FrameSize and in must be the analysis of the hop following the previous
// call.
func (v *PhaseVocoder) Shift(in, out *spectrum.Frame) bool {
	v.estimateFrequencies(in)

	transient := v.detectTransient(in.Mag)
	v.remap(in)

	switch {
	case transient:
		v.resetPhases(out)
	case v.cfg.phaseLocking && v.findPeaks():
		v.lockPhases(out)
	default:
		v.accumulatePhases(out)
	}

	return transient
}

func (v *PhaseVocoder) estimateFrequencies(in *spectrum.Frame) {
	hop := float64(v.hop)

	for k, phase := range in.Phase {
		delta := wrapPhase(phase - v.prevPhase[k] - v.omega[k]*hop)
		v.instFreq[k] = v.omega[k] + delta/hop
		v.prevPhase[k] = phase
	}
}

func (v *PhaseVocoder) detectTransient(mag []float64) bool {
	flux := spectrum.Flux(v.prevMag, mag)

	total := 0.0
	for _, m := range mag {
		total += m
	}

	copy(v.prevMag, mag)

	transient := v.cfg.transients &&
		flux > v.cfg.sensitivity*v.fluxAvg &&
		flux > transientMinFlux*total

	a := v.cfg.fluxSmoothing
	v.fluxAvg = a*v.fluxAvg + (1-a)*flux

	return transient
}

// remap moves analysis bin k to destination round(k*ratio). Magnitudes of
// colliding sources add up; the strongest source donates its phase and
// frequency.
func (v *PhaseVocoder) remap(in *spectrum.Frame) {
	bins := len(v.dstMag)

	for j := range bins {
		v.dstMag[j] = 0
		v.dstBest[j] = -1
		v.dstFreq[j] = v.omega[j]
		v.dstPhase[j] = 0
		v.dstCos[j] = 1
		v.dstSin[j] = 0
	}

	for k := range bins {
		j := int(math.Round(float64(k) * v.ratio))
		if j >= bins {
			break
		}

		m := in.Mag[k]
		v.dstMag[j] += m

		if m <= v.dstBest[j] {
			continue
		}

		v.dstBest[j] = m
		v.dstFreq[j] = v.instFreq[k] * v.ratio
		v.dstPhase[j] = in.Phase[k]

		if m > 0 {
			v.dstCos[j] = in.Re[k] / m
			v.dstSin[j] = in.Im[k] / m
		}
	}
}

// findPeaks collects strict local magnitude maxima of the destination
// spectrum and reports whether there are any.
func (v *PhaseVocoder) findPeaks() bool {
	v.peakBins = v.peakBins[:0]

	mag := v.dstMag
	for j := 1; j < len(mag)-1; j++ {
		if mag[j] > mag[j-1] && mag[j] > mag[j+1] {
			v.peakBins = append(v.peakBins, j)
		}
	}

	return len(v.peakBins) > 0
}

func (v *PhaseVocoder) resetPhases(out *spectrum.Frame) {
	for j, m := range v.dstMag {
		v.synPhase[j] = v.dstPhase[j]
		out.Mag[j] = m
		out.Phase[j] = v.dstPhase[j]
		out.Re[j] = m * v.dstCos[j]
		out.Im[j] = m * v.dstSin[j]
	}
}

func (v *PhaseVocoder) accumulatePhases(out *spectrum.Frame) {
	hop := float64(v.hop)

	for j, m := range v.dstMag {
		v.synPhase[j] = wrapPhase(v.synPhase[j] + v.dstFreq[j]*hop)
		out.SetPolar(j, m, v.synPhase[j])
	}
}

// lockPhases advances each peak's phase by its frequency and rotates every
// bin in the peak's region of influence by the same angle, so sin/cos is
// evaluated once per peak.
func (v *PhaseVocoder) lockPhases(out *spectrum.Frame) {
	hop := float64(v.hop)
	peaks := v.peakBins
	bins := len(v.dstMag)

	for i, pk := range peaks {
		// Bins closer to this peak than to its neighbours; ties go to the
		// lower peak.
		lo := 0
		if i > 0 {
			lo = (peaks[i-1]+pk)/2 + 1
		}

		hi := bins - 1
		if i+1 < len(peaks) {
			hi = (pk + peaks[i+1]) / 2
		}

		phi := wrapPhase(v.synPhase[pk] + v.dstFreq[pk]*hop)
		theta := v.dstPhase[pk]
		rotSin, rotCos := math.Sincos(phi - theta)

		for j := lo; j <= hi; j++ {
			m := v.dstMag[j]
			c, s := v.dstCos[j], v.dstSin[j]

			out.Mag[j] = m
			out.Re[j] = m * (c*rotCos - s*rotSin)
			out.Im[j] = m * (s*rotCos + c*rotSin)

			if j == pk {
				v.synPhase[j] = phi
			} else {
				v.synPhase[j] = wrapPhase(phi + v.dstPhase[j] - theta)
			}

			out.Phase[j] = v.synPhase[j]
		}
	}
}

func wrapPhase(x float64) float64 {
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}

	return x - math.Pi
}
