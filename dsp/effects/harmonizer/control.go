package harmonizer

import (
	"fmt"

	"github.com/cwbudde/algo-harmonizer/dsp/core"
	"github.com/cwbudde/algo-harmonizer/dsp/effects/pitch"
	"github.com/cwbudde/algo-harmonizer/dsp/harmony"
)

// Voices returns the number of voices being processed. A count passed to
// SetVoices is reported once Prepare has applied it.
func (e *Engine) Voices() int { return e.cfg.voices }

// SetVoices sets the number of voices, 1 to MaxVoices. The count takes
// effect at the next Prepare; until then the current voices keep running.
// Parameters of the added voices can be set right away.
func (e *Engine) SetVoices(n int) error {
	if n < 1 || n > MaxVoices {
		return core.NewConfigError("harmonizer", "voices", n, "must be in [1, 4]")
	}

	e.ctl.voiceCount.Store(int32(n))

	return nil
}

// Latency returns the delay in samples between input and output.
func (e *Engine) Latency() int { return e.cfg.transformSize }

// HopSize returns the analysis hop in samples.
func (e *Engine) HopSize() int { return e.cfg.hopSize }

// SampleRate returns the prepared sample rate, or 0 before Prepare.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// Context returns the key and scale that the next hop uses.
func (e *Engine) Context() harmony.Context { return *e.ctl.context.Load() }

// SetKey sets the key root.
func (e *Engine) SetKey(root harmony.PitchClass) error {
	if !root.Valid() {
		return fmt.Errorf("harmonizer: key root must be in [0, 11]: %d", int(root))
	}

	e.ctl.updateContext(func(c *harmony.Context) { c.Root = root })

	return nil
}

// SetScale sets the scale.
func (e *Engine) SetScale(scale harmony.Scale) error {
	if scale.Len() == 0 {
		return fmt.Errorf("harmonizer: scale is empty")
	}

	e.ctl.updateContext(func(c *harmony.Context) { c.Scale = scale })

	return nil
}

// SetContext sets key root and scale together.
func (e *Engine) SetContext(ctx harmony.Context) error {
	if err := ctx.Validate(); err != nil {
		return fmt.Errorf("harmonizer: %w", err)
	}

	e.ctl.updateContext(func(c *harmony.Context) { *c = ctx })

	return nil
}

func (e *Engine) voiceControls(i int) (*voiceControls, error) {
	if n := int(e.ctl.voiceCount.Load()); i < 0 || i >= n {
		return nil, fmt.Errorf("harmonizer: voice index must be in [0, %d): %d", n, i)
	}

	return &e.ctl.voices[i], nil
}

// Voice returns the parameters of voice i as last set.
func (e *Engine) Voice(i int) (VoiceParams, error) {
	vc, err := e.voiceControls(i)
	if err != nil {
		return VoiceParams{}, err
	}

	return vc.load(), nil
}

// SetVoiceParams replaces all parameters of voice i. Values are clamped
// into range; NaN and Inf become the parameter default.
func (e *Engine) SetVoiceParams(i int, p VoiceParams) error {
	vc, err := e.voiceControls(i)
	if err != nil {
		return err
	}

	vc.store(p.sanitized())
	e.ctl.changed()

	return nil
}

// SetVoiceStep sets the diatonic step of voice i, clamped to
// [-MaxStep, MaxStep].
func (e *Engine) SetVoiceStep(i, step int) error {
	vc, err := e.voiceControls(i)
	if err != nil {
		return err
	}

	vc.step.Store(int32(min(max(step, -MaxStep), MaxStep)))
	e.ctl.changed()

	return nil
}

// SetVoiceLevel sets the linear gain of voice i.
func (e *Engine) SetVoiceLevel(i int, level float64) error {
	vc, err := e.voiceControls(i)
	if err != nil {
		return err
	}

	vc.level.Store(sanitizeLevel(level))
	e.ctl.changed()

	return nil
}

// SetVoicePan sets the stereo position of voice i.
func (e *Engine) SetVoicePan(i int, pan float64) error {
	vc, err := e.voiceControls(i)
	if err != nil {
		return err
	}

	vc.pan.Store(sanitizePan(pan))
	e.ctl.changed()

	return nil
}

// SetVoiceOnsetDelay sets the onset delay of voice i in milliseconds.
func (e *Engine) SetVoiceOnsetDelay(i int, ms float64) error {
	vc, err := e.voiceControls(i)
	if err != nil {
		return err
	}

	vc.onsetMs.Store(sanitizeOnset(ms))
	e.ctl.changed()

	return nil
}

// SetVoiceFormant enables or disables formant preservation for voice i.
func (e *Engine) SetVoiceFormant(i int, enabled bool) error {
	vc, err := e.voiceControls(i)
	if err != nil {
		return err
	}

	vc.formant.Store(enabled)
	e.ctl.changed()

	return nil
}

// SetVoiceEnabled enables or disables voice i. A disabled voice fades out
// and its pipeline is flushed; an enabled one starts from a clean pipeline
// and fades in.
func (e *Engine) SetVoiceEnabled(i int, enabled bool) error {
	vc, err := e.voiceControls(i)
	if err != nil {
		return err
	}

	vc.enabled.Store(enabled)
	e.ctl.changed()

	return nil
}

// SetMix sets the gain of the summed voices in [0, 1].
func (e *Engine) SetMix(mix float64) {
	e.ctl.mix.Store(sanitizeMix(mix))
	e.ctl.changed()
}

// SetDry enables the latency-aligned dry signal at level.
func (e *Engine) SetDry(enabled bool, level float64) {
	e.ctl.dry.Store(enabled)
	e.ctl.dryLevel.Store(sanitizeLevel(level))
	e.ctl.changed()
}

// SetFrequencyRange sets the pitch detection range in Hz. NaN and Inf
// select the defaults of 60 and 1500 Hz. A range the prepared detector
// cannot use is ignored at the next hop.
func (e *Engine) SetFrequencyRange(minHz, maxHz float64) error {
	minHz = core.OrDefault(minHz, defaultMinHz)
	maxHz = core.OrDefault(maxHz, defaultMaxHz)

	if minHz <= 0 || maxHz <= minHz {
		return core.NewConfigError("harmonizer", "frequency range", [2]float64{minHz, maxHz},
			"need 0 < min < max")
	}

	e.ctl.minHz.Store(minHz)
	e.ctl.maxHz.Store(maxHz)
	e.ctl.rangeSet.Store(true)
	e.ctl.changed()

	return nil
}

// HeldPitch returns the pitch estimate currently driving the voices.
// Valid is false until a pitch has been detected.
func (e *Engine) HeldPitch() pitch.Estimate {
	return e.diag.held.load()
}

// VoiceSemitones returns the current smoothed shift of voice i in
// semitones, or 0 for an unknown voice.
func (e *Engine) VoiceSemitones(i int) float64 {
	if i < 0 || i >= e.cfg.voices {
		return 0
	}

	return e.diag.semitones[i].Load()
}

// VoiceConfidence returns the confidence of the pitch driving voice i, or
// 0 while the voice is idle.
func (e *Engine) VoiceConfidence(i int) float64 {
	if i < 0 || i >= e.cfg.voices {
		return 0
	}

	return e.diag.confidence[i].Load()
}

// ActiveVoices returns the number of voices that are enabled or still
// fading out.
func (e *Engine) ActiveVoices() int { return int(e.diag.active.Load()) }
