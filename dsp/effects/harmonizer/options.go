package harmonizer

import (
	"github.com/cwbudde/algo-harmonizer/dsp/core"
	"github.com/cwbudde/algo-harmonizer/dsp/effects/pitch"
	"github.com/cwbudde/algo-harmonizer/dsp/harmony"
	"github.com/cwbudde/algo-harmonizer/dsp/stft"
	"github.com/cwbudde/algo-harmonizer/dsp/window"
)

const (
	// MaxVoices is the number of voice slots an engine can hold.
	MaxVoices = 4

	defaultTransformSize = 2048
	defaultSmoothingMs   = 15.0
	defaultFadeMs        = 10.0
)

// Option configures an Engine.
type Option func(*config)

type config struct {
	voices        int
	transformSize int
	hopSize       int
	shape         window.Type
	smoothingMs   float64
	referenceA4   float64
	fadeMs        float64

	detectorOpts []pitch.DetectorOption
	vocoderOpts  []pitch.VocoderOption
	formantOpts  []pitch.FormantOption
}

func defaultConfig() config {
	return config{
		voices:        1,
		transformSize: defaultTransformSize,
		shape:         window.TypeHann,
		smoothingMs:   defaultSmoothingMs,
		referenceA4:   harmony.DefaultReferencePitch,
		fadeMs:        defaultFadeMs,
	}
}

// WithVoices sets the number of voices, 1 to MaxVoices.
func WithVoices(n int) Option {
	return func(c *config) { c.voices = n }
}

// WithTransformSize sets the pitch-shifting transform size. It also sets the
// engine latency.
func WithTransformSize(n int) Option {
	return func(c *config) { c.transformSize = n }
}

// WithHopSize sets the analysis hop. The default is a quarter of the
// transform size.
func WithHopSize(n int) Option {
	return func(c *config) { c.hopSize = n }
}

// WithWindow sets the analysis and synthesis window.
func WithWindow(t window.Type) Option {
	return func(c *config) { c.shape = t }
}

// WithSmoothing sets the time constant of the pitch ratio smoothing in
// milliseconds. Zero disables smoothing.
func WithSmoothing(ms float64) Option {
	return func(c *config) { c.smoothingMs = ms }
}

// WithReferencePitch sets the tuning of A4 in Hz used to name detected
// notes.
func WithReferencePitch(hz float64) Option {
	return func(c *config) { c.referenceA4 = hz }
}

// WithFadeTime sets the fade applied when a voice is enabled or disabled,
// in milliseconds.
func WithFadeTime(ms float64) Option {
	return func(c *config) { c.fadeMs = ms }
}

// WithDetectorOptions passes options to the shared pitch detector.
func WithDetectorOptions(opts ...pitch.DetectorOption) Option {
	return func(c *config) { c.detectorOpts = append(c.detectorOpts, opts...) }
}

// WithVocoderOptions passes options to every voice's phase vocoder.
func WithVocoderOptions(opts ...pitch.VocoderOption) Option {
	return func(c *config) { c.vocoderOpts = append(c.vocoderOpts, opts...) }
}

// WithFormantOptions passes options to every voice's formant preserver.
func WithFormantOptions(opts ...pitch.FormantOption) Option {
	return func(c *config) { c.formantOpts = append(c.formantOpts, opts...) }
}

func (c *config) validate() error {
	if c.voices < 1 || c.voices > MaxVoices {
		return core.NewConfigError("harmonizer", "voices", c.voices, "must be in [1, 4]")
	}

	if c.hopSize == 0 {
		c.hopSize = c.transformSize / 4
	}

	if _, _, err := stft.Validate(c.transformSize, c.hopSize, c.shape); err != nil {
		return err
	}

	if !core.IsFinite(c.smoothingMs) || c.smoothingMs < 0 {
		return core.NewConfigError("harmonizer", "smoothing", c.smoothingMs, "must be >= 0 ms")
	}

	if !core.IsFinitePositive(c.referenceA4) || c.referenceA4 > 1000 {
		return core.NewConfigError("harmonizer", "reference pitch", c.referenceA4, "must be in (0, 1000] Hz")
	}

	if !core.IsFinite(c.fadeMs) || c.fadeMs < 0 {
		return core.NewConfigError("harmonizer", "fade time", c.fadeMs, "must be >= 0 ms")
	}

	return nil
}
