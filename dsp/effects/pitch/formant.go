package pitch

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-harmonizer/dsp/core"
	"github.com/cwbudde/algo-harmonizer/dsp/spectrum"
	"github.com/cwbudde/algo-harmonizer/internal/fastmath"
	algofft "github.com/MeKo-Christian/algo-fft"
)

const (
	defaultLifterCutoff   = 0.0015
	defaultMaxGainDB      = 24.0
	defaultFullCorrection = 7.0
	defaultNoCorrection   = 12.0

	envelopeFloor = 1e-9
	lifterTaper   = 4
)

// EnvelopeEstimator computes the cepstrally smoothed spectral envelope of a
// magnitude spectrum.
type EnvelopeEstimator struct {
	size   int
	cutoff int
	plan   *algofft.Plan[complex128]
	buf    []complex128
	lifter []float64
}

// NewEnvelopeEstimator returns an estimator for frames of frameSize
// samples that keeps quefrencies below cutoffSamples.
func NewEnvelopeEstimator(frameSize, cutoffSamples int) (*EnvelopeEstimator, error) {
	if frameSize < minVocoderFrameSize || !core.IsPowerOfTwo(frameSize) {
		return nil, core.NewConfigError("envelope estimator", "frame size", frameSize, "must be a power of two >= 64")
	}

	if cutoffSamples < 1 || cutoffSamples > frameSize/2 {
		return nil, core.NewConfigError("envelope estimator", "lifter cutoff", cutoffSamples,
			"must be in [1, frameSize/2] samples")
	}

	plan, err := algofft.NewPlan64(frameSize)
	if err != nil {
		return nil, fmt.Errorf("envelope estimator: failed to create FFT plan: %w", err)
	}

	e := &EnvelopeEstimator{
		size:   frameSize,
		cutoff: cutoffSamples,
		plan:   plan,
		buf:    make([]complex128, frameSize),
		lifter: make([]float64, frameSize),
	}

	taper := min(lifterTaper, cutoffSamples)
	flat := cutoffSamples - taper

	for n := range e.lifter {
		q := min(n, frameSize-n)

		switch {
		case q < flat:
			e.lifter[n] = 1
		case q < cutoffSamples:
			e.lifter[n] = 0.5 + 0.5*math.Cos(math.Pi*(float64(q-flat)+0.5)/float64(taper))
		}
	}

	return e, nil
}

// Cutoff returns the lifter cutoff in samples.
func (e *EnvelopeEstimator) Cutoff() int { return e.cutoff }

// Estimate writes the linear envelope of mag (FrameSize/2+1 bins) to dst.
func (e *EnvelopeEstimator) Estimate(mag, dst []float64) error {
	half := e.size / 2
	if len(mag) != half+1 || len(dst) != half+1 {
		return fmt.Errorf("envelope estimator: spectra must have %d bins: %d", half+1, len(mag))
	}

	for k, m := range mag {
		l := complex(fastmath.Log(math.Max(m, envelopeFloor)), 0)
		e.buf[k] = l

		if k > 0 && k < half {
			e.buf[e.size-k] = l
		}
	}

	if err := e.plan.Inverse(e.buf, e.buf); err != nil {
		return fmt.Errorf("envelope estimator: inverse FFT failed: %w", err)
	}

	for n, c := range e.buf {
		e.buf[n] = complex(real(c)*e.lifter[n], 0)
	}

	if err := e.plan.Forward(e.buf, e.buf); err != nil {
		return fmt.Errorf("envelope estimator: forward FFT failed: %w", err)
	}

	for k := range dst {
		dst[k] = fastmath.Exp(real(e.buf[k]))
	}

	return nil
}

// FormantOption configures a FormantPreserver.
type FormantOption func(*formantConfig)

type formantConfig struct {
	lifterCutoff float64
	maxGainDB    float64
	full         float64
	none         float64
}

// WithLifterCutoff sets the cepstral lifter cutoff in seconds.
func WithLifterCutoff(seconds float64) FormantOption {
	return func(c *formantConfig) { c.lifterCutoff = seconds }
}

// WithMaxGainDB limits the per-bin correction to +/- db.
func WithMaxGainDB(db float64) FormantOption {
	return func(c *formantConfig) { c.maxGainDB = db }
}

// WithCorrectionLimits sets the shift up to which formants are fully
// corrected and the shift from which they are left alone. In between the
// correction fades linearly.
func WithCorrectionLimits(fullSemitones, noneSemitones float64) FormantOption {
	return func(c *formantConfig) {
		c.full = fullSemitones
		c.none = noneSemitones
	}
}

// FormantPreserver restores the spectral envelope of the unshifted signal
// onto a pitch-shifted spectrum.
type FormantPreserver struct {
	cfg       formantConfig
	maxGain   float64
	estimator *EnvelopeEstimator
	original  []float64
	shifted   []float64
	captured  bool
}

// NewFormantPreserver returns a preserver for frames of frameSize samples
// at sampleRate.
func NewFormantPreserver(frameSize int, sampleRate float64, opts ...FormantOption) (*FormantPreserver, error) {
	if !core.IsFinitePositive(sampleRate) {
		return nil, core.NewConfigError("formant preserver", "sample rate", sampleRate, "must be positive and finite")
	}

	cfg := formantConfig{
		lifterCutoff: defaultLifterCutoff,
		maxGainDB:    defaultMaxGainDB,
		full:         defaultFullCorrection,
		none:         defaultNoCorrection,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if !core.IsFinitePositive(cfg.lifterCutoff) {
		return nil, core.NewConfigError("formant preserver", "lifter cutoff", cfg.lifterCutoff, "must be positive")
	}

	if !core.IsFinitePositive(cfg.maxGainDB) {
		return nil, core.NewConfigError("formant preserver", "max gain", cfg.maxGainDB, "must be positive dB")
	}

	if !core.IsFinite(cfg.full) || !core.IsFinite(cfg.none) || cfg.full < 0 || cfg.none <= cfg.full {
		return nil, core.NewConfigError("formant preserver", "correction limits", [2]float64{cfg.full, cfg.none},
			"need 0 <= full < none")
	}

	cutoff := int(math.Round(cfg.lifterCutoff * sampleRate))
	cutoff = min(max(cutoff, 2), frameSize/4)

	est, err := NewEnvelopeEstimator(frameSize, cutoff)
	if err != nil {
		return nil, err
	}

	bins := frameSize/2 + 1

	return &FormantPreserver{
		cfg:       cfg,
		maxGain:   core.DBToLinear(cfg.maxGainDB),
		estimator: est,
		original:  make([]float64, bins),
		shifted:   make([]float64, bins),
	}, nil
}

// CorrectionWeight returns the fraction of the envelope correction applied
// at a shift of semitones: 1 up to the full-correction limit, 0 from the
// no-correction limit, linear in between.
func (f *FormantPreserver) CorrectionWeight(semitones float64) float64 {
	a := math.Abs(semitones)

	switch {
	case !core.IsFinite(a) || a >= f.cfg.none:
		return 0
	case a <= f.cfg.full:
		return 1
	default:
		return (f.cfg.none - a) / (f.cfg.none - f.cfg.full)
	}
}

// CaptureEnvelope stores the envelope of the unshifted analysis frame.
func (f *FormantPreserver) CaptureEnvelope(pre *spectrum.Frame) error {
	if err := f.estimator.Estimate(pre.Mag, f.original); err != nil {
		return err
	}

	f.captured = true

	return nil
}

// CaptureFrom copies the envelope captured by other, which must use the
// same frame size.
func (f *FormantPreserver) CaptureFrom(other *FormantPreserver) {
	copy(f.original, other.original)
	f.captured = other.captured
}

// Envelope returns the captured envelope. The slice is owned by f.
func (f *FormantPreserver) Envelope() []float64 { return f.original }

// Apply replaces the envelope of shifted by the captured one, weighted by
// CorrectionWeight(semitones). Each bin's gain is limited to the configured
// maximum. Without a captured envelope, shifted is left unchanged.
func (f *FormantPreserver) Apply(shifted *spectrum.Frame, semitones float64) error {
	w := f.CorrectionWeight(semitones)
	if !f.captured || w == 0 {
		return nil
	}

	if err := f.estimator.Estimate(shifted.Mag, f.shifted); err != nil {
		return err
	}

	for k, env := range f.shifted {
		g := core.Clamp(f.original[k]/env, 1/f.maxGain, f.maxGain)
		if w < 1 {
			g = fastmath.Exp(w * fastmath.Log(g))
		}

		shifted.ScaleBin(k, g)
	}

	return nil
}

// Reset forgets the captured envelope.
func (f *FormantPreserver) Reset() {
	core.Zero(f.original)
	f.captured = false
}
