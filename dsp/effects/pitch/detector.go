package pitch

import (
	"math"

	"github.com/cwbudde/algo-harmonizer/dsp/core"
)

const (
	defaultMinFrequency     = 60.0
	defaultMaxFrequency     = 1500.0
	defaultConfidenceFloor  = 0.7
	defaultSilenceThreshold = 1e-4
	minDetectorWindow       = 256

	// keyMaximumThreshold selects the first key maximum within this fraction
	// of the highest one (McLeod and Wyvill's k).
	keyMaximumThreshold = 0.9
)

// Estimate is the result of one pitch analysis.
type Estimate struct {
	FrequencyHz float64
	// Confidence is the normalized autocorrelation at the detected lag,
	// clamped to [0, 1].
	Confidence float64
	Valid      bool
}

// DetectorOption configures a Detector.
type DetectorOption func(*detectorConfig)

type detectorConfig struct {
	minHz      float64
	maxHz      float64
	windowSize int
	floor      float64
	silence    float64
}

// WithFrequencyRange limits detection to [minHz, maxHz].
func WithFrequencyRange(minHz, maxHz float64) DetectorOption {
	return func(c *detectorConfig) {
		c.minHz = minHz
		c.maxHz = maxHz
	}
}

// WithWindowSize sets the analysis window length in samples. By default it
// is the smallest power of two holding two periods of the lowest frequency,
// and at least 256.
func WithWindowSize(n int) DetectorOption {
	return func(c *detectorConfig) { c.windowSize = n }
}

// WithConfidenceFloor sets the minimum confidence for a valid estimate.
func WithConfidenceFloor(v float64) DetectorOption {
	return func(c *detectorConfig) { c.floor = v }
}

// WithSilenceThreshold sets the RMS level below which input is treated as
// silence.
func WithSilenceThreshold(rms float64) DetectorOption {
	return func(c *detectorConfig) { c.silence = rms }
}

// Detector estimates the fundamental frequency of monophonic input with the
// normalized square difference function (McLeod pitch method).
//
// Unvoiced, silent or out-of-range input is reported with Valid=false; the
// detector keeps no estimate history. It is not safe for concurrent use.
type Detector struct {
	sampleRate float64
	cfg        detectorConfig

	minLag, maxLag int

	frame  []float64
	nsdf   []float64
	maxima []int
}

// NewDetector returns a pitch detector for the given sample rate.
func NewDetector(sampleRate float64, opts ...DetectorOption) (*Detector, error) {
	if !core.IsFinitePositive(sampleRate) {
		return nil, core.NewConfigError("pitch detector", "sample rate", sampleRate, "must be positive and finite")
	}

	cfg := detectorConfig{
		minHz:   defaultMinFrequency,
		maxHz:   defaultMaxFrequency,
		floor:   defaultConfidenceFloor,
		silence: defaultSilenceThreshold,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := validateRange(sampleRate, cfg.minHz, cfg.maxHz); err != nil {
		return nil, err
	}

	if cfg.windowSize == 0 {
		cfg.windowSize = defaultWindowSize(sampleRate, cfg.minHz)
	}

	if cfg.windowSize < minDetectorWindow/4 {
		return nil, core.NewConfigError("pitch detector", "window size", cfg.windowSize, "must be >= 64")
	}

	if !core.IsFinite(cfg.floor) || cfg.floor < 0 || cfg.floor > 1 {
		return nil, core.NewConfigError("pitch detector", "confidence floor", cfg.floor, "must be in [0, 1]")
	}

	if !core.IsFinite(cfg.silence) || cfg.silence < 0 {
		return nil, core.NewConfigError("pitch detector", "silence threshold", cfg.silence, "must be >= 0")
	}

	d := &Detector{
		sampleRate: sampleRate,
		cfg:        cfg,
		frame:      make([]float64, cfg.windowSize),
		nsdf:       make([]float64, cfg.windowSize/2+2),
		maxima:     make([]int, 0, cfg.windowSize/2),
	}
	d.updateLags()

	return d, nil
}

func validateRange(sampleRate, minHz, maxHz float64) error {
	if !core.IsFinitePositive(minHz) {
		return core.NewConfigError("pitch detector", "min frequency", minHz, "must be positive and finite")
	}

	if !core.IsFinite(maxHz) || maxHz <= minHz || maxHz >= sampleRate/2 {
		return core.NewConfigError("pitch detector", "max frequency", maxHz,
			"must be above the min frequency and below Nyquist")
	}

	return nil
}

func defaultWindowSize(sampleRate, minHz float64) int {
	need := int(math.Ceil(2 * sampleRate / minHz))

	n := minDetectorWindow
	for n < need {
		n <<= 1
	}

	return n
}

// WindowSize returns the number of samples analysed by Process.
func (d *Detector) WindowSize() int { return d.cfg.windowSize }

// FrequencyRange returns the detection range in Hz.
func (d *Detector) FrequencyRange() (minHz, maxHz float64) { return d.cfg.minHz, d.cfg.maxHz }

// SetFrequencyRange changes the detection range. Frequencies whose period
// does not fit twice into the window are not detectable; the window size is
// not changed.
func (d *Detector) SetFrequencyRange(minHz, maxHz float64) error {
	if err := validateRange(d.sampleRate, minHz, maxHz); err != nil {
		return err
	}

	d.cfg.minHz = minHz
	d.cfg.maxHz = maxHz
	d.updateLags()

	return nil
}

// SetConfidenceFloor changes the minimum confidence for a valid estimate.
func (d *Detector) SetConfidenceFloor(v float64) error {
	if !core.IsFinite(v) || v < 0 || v > 1 {
		return core.NewConfigError("pitch detector", "confidence floor", v, "must be in [0, 1]")
	}

	d.cfg.floor = v

	return nil
}

// Reset clears the internal analysis buffer.
func (d *Detector) Reset() {
	core.Zero(d.frame)
	core.Zero(d.nsdf)
	d.maxima = d.maxima[:0]
}

func (d *Detector) updateLags() {
	d.minLag = max(2, int(math.Floor(d.sampleRate/d.cfg.maxHz)))
	d.maxLag = min(d.cfg.windowSize/2, int(math.Ceil(d.sampleRate/d.cfg.minHz))+1)
}

// Process analyses the most recent WindowSize samples of samples. Shorter
// input is zero-padded at the front.
func (d *Detector) Process(samples []float64) Estimate {
	w := len(d.frame)
	if len(samples) > w {
		samples = samples[len(samples)-w:]
	}

	pad := w - len(samples)
	core.Zero(d.frame[:pad])

	energy := 0.0
	for i, x := range samples {
		x = core.Sanitize(x)
		d.frame[pad+i] = x
		energy += x * x
	}

	if math.Sqrt(energy/float64(w)) < d.cfg.silence || d.minLag >= d.maxLag {
		return Estimate{}
	}

	d.computeNSDF(energy)

	lag, ok := d.pickLag()
	if !ok {
		return Estimate{}
	}

	tau, peak := parabolicPeak(d.nsdf, lag)
	est := Estimate{
		FrequencyHz: d.sampleRate / tau,
		Confidence:  core.Clamp(peak, 0, 1),
	}

	est.Valid = est.Confidence >= d.cfg.floor &&
		est.FrequencyHz >= d.cfg.minHz && est.FrequencyHz <= d.cfg.maxHz

	return est
}

// computeNSDF fills nsdf[tau] = 2*r(tau)/m(tau) for tau in [0, maxLag+1].
func (d *Detector) computeNSDF(energy float64) {
	x := d.frame
	w := len(x)
	m := 2 * energy

	last := min(d.maxLag+1, w-1)
	for tau := 0; tau <= last; tau++ {
		if tau > 0 {
			m -= x[tau-1]*x[tau-1] + x[w-tau]*x[w-tau]
		}

		r := 0.0
		for j := 0; j < w-tau; j++ {
			r += x[j] * x[j+tau]
		}

		if m > 0 {
			d.nsdf[tau] = 2 * r / m
		} else {
			d.nsdf[tau] = 0
		}
	}
}

// pickLag returns the first key maximum within keyMaximumThreshold of the
// highest one. The lobe around lag zero is skipped.
func (d *Detector) pickLag() (int, bool) {
	d.maxima = d.maxima[:0]

	n := d.nsdf
	tau := 1

	for tau <= d.maxLag && n[tau] > 0 {
		tau++
	}

	best := -1
	inLobe := false

	for ; tau <= d.maxLag; tau++ {
		switch {
		case n[tau] > 0 && !inLobe:
			inLobe = true
			best = tau
		case n[tau] > 0:
			if n[tau] > n[best] {
				best = tau
			}
		case inLobe:
			inLobe = false
			d.appendMaximum(best)
		}
	}

	if inLobe {
		d.appendMaximum(best)
	}

	if len(d.maxima) == 0 {
		return 0, false
	}

	highest := 0.0
	for _, t := range d.maxima {
		highest = math.Max(highest, n[t])
	}

	for _, t := range d.maxima {
		if n[t] >= keyMaximumThreshold*highest {
			return t, true
		}
	}

	return 0, false
}

func (d *Detector) appendMaximum(tau int) {
	// Lobe maxima on the search boundary are not true peaks.
	if tau < d.minLag || tau >= d.maxLag {
		return
	}

	if len(d.maxima) < cap(d.maxima) {
		d.maxima = append(d.maxima, tau)
	}
}

// parabolicPeak refines the peak at index i by fitting a parabola through
// its neighbours.
func parabolicPeak(y []float64, i int) (float64, float64) {
	a, b, c := y[i-1], y[i], y[i+1]

	den := a - 2*b + c
	if den == 0 {
		return float64(i), b
	}

	delta := 0.5 * (a - c) / den

	return float64(i) + delta, b - 0.25*(a-c)*delta
}
