package harmonizer

import (
	"math"
	"runtime"
	"sync/atomic"

	"github.com/cwbudde/algo-harmonizer/dsp/core"
	"github.com/cwbudde/algo-harmonizer/dsp/effects/pitch"
	"github.com/cwbudde/algo-harmonizer/dsp/harmony"
)

const (
	// MaxStep is the largest diatonic step, up or down, a voice accepts.
	MaxStep = 15
	// MaxLevel is the largest voice or dry gain.
	MaxLevel = 2.0
	// MaxOnsetDelayMs is the longest per-voice onset delay.
	MaxOnsetDelayMs = 50.0

	defaultMinHz = 60.0
	defaultMaxHz = 1500.0
)

var defaultSteps = [MaxVoices]int{3, 5, -3, 8}

// VoiceParams are the user controls of one voice.
type VoiceParams struct {
	// Step is the diatonic step: 1 is unison, 3 a third above, -3 a third
	// below. Steps -1, 0 and 1 are all unison.
	Step int
	// Level is the linear voice gain in [0, MaxLevel].
	Level float64
	// Pan is the stereo position in [-1, 1]. It only affects ProcessStereo.
	Pan float64
	// OnsetDelayMs delays the voice by up to MaxOnsetDelayMs.
	OnsetDelayMs    float64
	FormantPreserve bool
	Enabled         bool
}

// DefaultVoiceParams returns the defaults of voice slot i.
func DefaultVoiceParams(i int) VoiceParams {
	step := 3
	if i >= 0 && i < MaxVoices {
		step = defaultSteps[i]
	}

	return VoiceParams{
		Step:            step,
		Level:           1,
		FormantPreserve: true,
		Enabled:         true,
	}
}

// sanitized clamps p into range and replaces non-finite values by their
// defaults.
func (p VoiceParams) sanitized() VoiceParams {
	p.Step = min(max(p.Step, -MaxStep), MaxStep)
	p.Level = sanitizeLevel(p.Level)
	p.Pan = sanitizePan(p.Pan)
	p.OnsetDelayMs = sanitizeOnset(p.OnsetDelayMs)

	return p
}

func sanitizeLevel(v float64) float64 { return core.Clamp(core.OrDefault(v, 1), 0, MaxLevel) }

func sanitizePan(v float64) float64 { return core.Clamp(core.OrDefault(v, 0), -1, 1) }

func sanitizeOnset(v float64) float64 { return core.Clamp(core.OrDefault(v, 0), 0, MaxOnsetDelayMs) }

func sanitizeMix(v float64) float64 { return core.Clamp(core.OrDefault(v, 1), 0, 1) }

// atomicFloat is a float64 stored as its IEEE bits.
type atomicFloat struct {
	bits atomic.Uint64
}

func (a *atomicFloat) Load() float64 { return math.Float64frombits(a.bits.Load()) }

func (a *atomicFloat) Store(v float64) { a.bits.Store(math.Float64bits(v)) }

type voiceControls struct {
	step    atomic.Int32
	level   atomicFloat
	pan     atomicFloat
	onsetMs atomicFloat
	formant atomic.Bool
	enabled atomic.Bool
}

func (v *voiceControls) load() VoiceParams {
	return VoiceParams{
		Step:            int(v.step.Load()),
		Level:           v.level.Load(),
		Pan:             v.pan.Load(),
		OnsetDelayMs:    v.onsetMs.Load(),
		FormantPreserve: v.formant.Load(),
		Enabled:         v.enabled.Load(),
	}
}

func (v *voiceControls) store(p VoiceParams) {
	v.step.Store(int32(p.Step))
	v.level.Store(p.Level)
	v.pan.Store(p.Pan)
	v.onsetMs.Store(p.OnsetDelayMs)
	v.formant.Store(p.FormantPreserve)
	v.enabled.Store(p.Enabled)
}

// controls hold values written by control goroutines. Every store bumps
// generation; the audio goroutine re-reads everything when it changes.
type controls struct {
	generation atomic.Uint64

	context atomic.Pointer[harmony.Context]
	voices  [MaxVoices]voiceControls
	// voiceCount is the number of voices the next Prepare builds.
	voiceCount atomic.Int32

	mix      atomicFloat
	dry      atomic.Bool
	dryLevel atomicFloat
	// rangeSet is false until SetFrequencyRange is called; until then the
	// detector keeps the range it was built with.
	rangeSet atomic.Bool
	minHz    atomicFloat
	maxHz    atomicFloat
}

func newControls() *controls {
	c := &controls{}

	ctx := harmony.Context{Root: harmony.C, Scale: harmony.Major}
	c.context.Store(&ctx)

	for i := range c.voices {
		c.voices[i].store(DefaultVoiceParams(i))
	}

	c.mix.Store(1)
	c.dryLevel.Store(1)
	c.minHz.Store(defaultMinHz)
	c.maxHz.Store(defaultMaxHz)

	return c
}

func (c *controls) changed() { c.generation.Add(1) }

// updateContext applies fn to a copy of the current context and publishes
// the result.
func (c *controls) updateContext(fn func(*harmony.Context)) {
	for {
		old := c.context.Load()
		next := *old
		fn(&next)

		if c.context.CompareAndSwap(old, &next) {
			c.changed()
			return
		}
	}
}

// diagnostics are written by the audio goroutine once per hop.
type diagnostics struct {
	held       heldPitch
	semitones  [MaxVoices]atomicFloat
	confidence [MaxVoices]atomicFloat
	active     atomic.Int32
}

func (d *diagnostics) clear() {
	d.held.store(pitch.Estimate{})

	for i := range d.semitones {
		d.semitones[i].Store(0)
		d.confidence[i].Store(0)
	}

	d.active.Store(0)
}

// heldPitch publishes an estimate whose fields are read together. seq is
// odd while a store is in progress.
type heldPitch struct {
	seq   atomic.Uint64
	hz    atomicFloat
	conf  atomicFloat
	valid atomic.Bool
}

// store must only be called from one goroutine at a time.
func (h *heldPitch) store(est pitch.Estimate) {
	h.seq.Add(1)
	h.hz.Store(est.FrequencyHz)
	h.conf.Store(est.Confidence)
	h.valid.Store(est.Valid)
	h.seq.Add(1)
}

func (h *heldPitch) load() pitch.Estimate {
	for {
		seq := h.seq.Load()
		if seq&1 != 0 {
			runtime.Gosched()
			continue
		}

		est := pitch.Estimate{
			FrequencyHz: h.hz.Load(),
			Confidence:  h.conf.Load(),
			Valid:       h.valid.Load(),
		}

		if h.seq.Load() == seq {
			return est
		}
	}
}
