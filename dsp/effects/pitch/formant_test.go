package pitch

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-harmonizer/dsp/core"
	"github.com/cwbudde/algo-harmonizer/dsp/spectrum"
)

func frameFromMagnitudes(t *testing.T, size int, mag func(k int) float64) *spectrum.Frame {
	t.Helper()

	f, err := spectrum.NewFrame(size)
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}

	for k := range f.Bins() {
		f.SetPolar(k, mag(k), 0.3*float64(k))
	}

	return f
}

func argmax(x []float64) int {
	best := 0
	for i, v := range x {
		if v > x[best] {
			best = i
		}
	}

	return best
}

// formantMagnitude is a single formant centred on bin centre under a
// harmonic comb with the given spacing.
func formantMagnitude(centre, spacing float64) func(k int) float64 {
	return func(k int) float64 {
		env := 0.01 + math.Exp(-math.Pow((float64(k)-centre)/25, 2))

		comb := 0.05
		if math.Mod(float64(k), spacing) < 0.5 {
			comb = 1
		}

		return env * comb
	}
}

func TestNewEnvelopeEstimatorValidates(t *testing.T) {
	for _, tc := range []struct{ size, cutoff int }{
		{size: 1000, cutoff: 10},
		{size: 1024, cutoff: 0},
		{size: 1024, cutoff: 513},
	} {
		if _, err := NewEnvelopeEstimator(tc.size, tc.cutoff); !errors.Is(err, core.ErrConfig) {
			t.Fatalf("NewEnvelopeEstimator(%d, %d) error = %v, want config error", tc.size, tc.cutoff, err)
		}
	}
}

func TestEnvelopeOfFlatSpectrumIsFlat(t *testing.T) {
	e, err := NewEnvelopeEstimator(512, 24)
	if err != nil {
		t.Fatalf("NewEnvelopeEstimator() error = %v", err)
	}

	mag := make([]float64, 257)
	for k := range mag {
		mag[k] = 0.25
	}

	env := make([]float64, 257)
	if err := e.Estimate(mag, env); err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}

	for k, v := range env {
		if math.Abs(v-0.25) > 1e-3 {
			t.Fatalf("env[%d] = %v, want 0.25", k, v)
		}
	}

	if err := e.Estimate(mag[:10], env); err == nil {
		t.Fatal("Estimate() expected bin count error")
	}
}

func TestEnvelopeFollowsFormantNotHarmonics(t *testing.T) {
	e, _ := NewEnvelopeEstimator(2048, 72)

	mag := make([]float64, 1025)
	shape := formantMagnitude(300, 20)

	for k := range mag {
		mag[k] = shape(k)
	}

	env := make([]float64, 1025)
	_ = e.Estimate(mag, env)

	if peak := argmax(env); math.Abs(float64(peak-300)) > 8 {
		t.Fatalf("envelope peak at bin %d, want near 300", peak)
	}

	// The comb must be smoothed away: neighbouring bins on and off a
	// harmonic have similar envelope values.
	if r := env[300] / env[310]; r > 1.5 || r < 1/1.5 {
		t.Fatalf("envelope ripple between bins 300 and 310 = %v", r)
	}
}

func TestCorrectionWeight(t *testing.T) {
	fp, err := NewFormantPreserver(2048, 48000)
	if err != nil {
		t.Fatalf("NewFormantPreserver() error = %v", err)
	}

	tests := []struct {
		semitones float64
		want      float64
	}{
		{semitones: 0, want: 1},
		{semitones: 4, want: 1},
		{semitones: -7, want: 1},
		{semitones: 9.5, want: 0.5},
		{semitones: -9.5, want: 0.5},
		{semitones: 12, want: 0},
		{semitones: 19, want: 0},
		{semitones: math.NaN(), want: 0},
	}

	for _, tt := range tests {
		if got := fp.CorrectionWeight(tt.semitones); math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("CorrectionWeight(%v) = %v, want %v", tt.semitones, got, tt.want)
		}
	}
}

func TestFormantPreserverRestoresEnvelope(t *testing.T) {
	const ratio = 1.25

	semitones := core.RatioToSemitones(ratio)

	fp, err := NewFormantPreserver(2048, 48000)
	if err != nil {
		t.Fatalf("NewFormantPreserver() error = %v", err)
	}

	pre := frameFromMagnitudes(t, 2048, formantMagnitude(100, 20))
	shifted := frameFromMagnitudes(t, 2048, formantMagnitude(100*ratio, 20*ratio))

	if err := fp.CaptureEnvelope(pre); err != nil {
		t.Fatalf("CaptureEnvelope() error = %v", err)
	}

	check, _ := NewEnvelopeEstimator(2048, 72)
	env := make([]float64, shifted.Bins())

	_ = check.Estimate(shifted.Mag, env)
	if peak := argmax(env); math.Abs(float64(peak)-125) > 8 {
		t.Fatalf("uncorrected envelope peak at %d, want near 125", peak)
	}

	phaseBefore := shifted.Phase[250]

	if err := fp.Apply(shifted, semitones); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	_ = check.Estimate(shifted.Mag, env)
	if peak := argmax(env); math.Abs(float64(peak)-100) > 8 {
		t.Fatalf("corrected envelope peak at %d, want near 100", peak)
	}

	if shifted.Phase[250] != phaseBefore {
		t.Fatal("Apply() changed bin phase")
	}

	if math.Abs(math.Hypot(shifted.Re[250], shifted.Im[250])-shifted.Mag[250]) > 1e-9 {
		t.Fatal("Apply() left Re/Im inconsistent with Mag")
	}
}

func TestFormantPreserverPolicy(t *testing.T) {
	fp, _ := NewFormantPreserver(1024, 48000)

	pre := frameFromMagnitudes(t, 1024, formantMagnitude(60, 12))
	orig := frameFromMagnitudes(t, 1024, formantMagnitude(120, 24))
	shifted := frameFromMagnitudes(t, 1024, formantMagnitude(120, 24))

	// Without a captured envelope nothing happens.
	_ = fp.Apply(shifted, 3)
	for k := range shifted.Mag {
		if shifted.Mag[k] != orig.Mag[k] {
			t.Fatalf("Apply() without capture changed bin %d", k)
		}
	}

	_ = fp.CaptureEnvelope(pre)

	// Beyond the no-correction limit nothing happens either.
	_ = fp.Apply(shifted, 12)
	for k := range shifted.Mag {
		if shifted.Mag[k] != orig.Mag[k] {
			t.Fatalf("Apply() at 12 semitones changed bin %d", k)
		}
	}

	// Halfway through the fade the gain is the square root of the full one.
	full := frameFromMagnitudes(t, 1024, formantMagnitude(120, 24))
	half := frameFromMagnitudes(t, 1024, formantMagnitude(120, 24))

	_ = fp.Apply(full, 5)
	_ = fp.Apply(half, 9.5)

	for _, k := range []int{30, 60, 200} {
		gFull := full.Mag[k] / orig.Mag[k]
		gHalf := half.Mag[k] / orig.Mag[k]

		if math.Abs(gHalf-math.Sqrt(gFull)) > 1e-2*math.Sqrt(gFull) {
			t.Fatalf("bin %d: half-weight gain %v, want sqrt(%v)", k, gHalf, gFull)
		}
	}
}

func TestFormantPreserverGainLimit(t *testing.T) {
	fp, _ := NewFormantPreserver(512, 48000, WithMaxGainDB(12))

	pre := frameFromMagnitudes(t, 512, func(int) float64 { return 1 })
	quiet := frameFromMagnitudes(t, 512, func(int) float64 { return 1e-3 })

	_ = fp.CaptureEnvelope(pre)
	_ = fp.Apply(quiet, 1)

	want := 1e-3 * core.DBToLinear(12)
	for k, m := range quiet.Mag {
		if math.Abs(m-want) > 1e-6 {
			t.Fatalf("Mag[%d] = %v, want gain-limited %v", k, m, want)
		}
	}
}

func TestFormantPreserverCaptureFromAndReset(t *testing.T) {
	a, _ := NewFormantPreserver(512, 48000)
	b, _ := NewFormantPreserver(512, 48000)

	pre := frameFromMagnitudes(t, 512, formantMagnitude(40, 10))
	_ = a.CaptureEnvelope(pre)

	b.CaptureFrom(a)

	for k := range a.Envelope() {
		if a.Envelope()[k] != b.Envelope()[k] {
			t.Fatalf("CaptureFrom() envelope differs at bin %d", k)
		}
	}

	b.Reset()

	shifted := frameFromMagnitudes(t, 512, formantMagnitude(50, 12))
	before := shifted.Mag[50]

	_ = b.Apply(shifted, 2)
	if shifted.Mag[50] != before {
		t.Fatal("Apply() after Reset changed the frame")
	}
}

func TestNewFormantPreserverValidates(t *testing.T) {
	tests := []struct {
		name string
		size int
		rate float64
		opts []FormantOption
	}{
		{name: "bad rate", size: 1024, rate: 0},
		{name: "bad size", size: 1000, rate: 48000},
		{name: "bad cutoff", size: 1024, rate: 48000, opts: []FormantOption{WithLifterCutoff(-1)}},
		{name: "bad gain", size: 1024, rate: 48000, opts: []FormantOption{WithMaxGainDB(0)}},
		{name: "bad limits", size: 1024, rate: 48000, opts: []FormantOption{WithCorrectionLimits(12, 7)}},
	}

	for _, tt := range tests {
		if _, err := NewFormantPreserver(tt.size, tt.rate, tt.opts...); !errors.Is(err, core.ErrConfig) {
			t.Fatalf("%s: error = %v, want config error", tt.name, err)
		}
	}
}
