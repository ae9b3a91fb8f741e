package harmonizer

import (
	"math"

	"github.com/cwbudde/algo-harmonizer/dsp/core"
	"github.com/cwbudde/algo-harmonizer/dsp/delay"
	"github.com/cwbudde/algo-harmonizer/dsp/effects/pitch"
	"github.com/cwbudde/algo-harmonizer/dsp/spectrum"
	"github.com/cwbudde/algo-harmonizer/dsp/stft"
)

// voice is one pitch-shift pipeline. All of its state is exclusive to it.
type voice struct {
	params VoiceParams

	vocoder *pitch.PhaseVocoder
	formant *pitch.FormantPreserver
	synth   *stft.Synthesizer
	onset   *delay.Line

	shifted *spectrum.Frame
	frame   []float64
	out     []float64

	onsetSamples float64
	panL, panR   float64

	// ratio is the smoothed pitch ratio.
	ratio float64
	fade  float64
	// idle voices are disabled, fully faded out and flushed.
	idle bool
}

func newVoice(cfg config, sampleRate float64) (voice, error) {
	n, hop := cfg.transformSize, cfg.hopSize

	voc, err := pitch.NewPhaseVocoder(n, hop, cfg.vocoderOpts...)
	if err != nil {
		return voice{}, err
	}

	fp, err := pitch.NewFormantPreserver(n, sampleRate, cfg.formantOpts...)
	if err != nil {
		return voice{}, err
	}

	synth, err := stft.NewSynthesizer(n, hop, cfg.shape)
	if err != nil {
		return voice{}, err
	}

	onset, err := delay.New(int(math.Ceil(MaxOnsetDelayMs*sampleRate/1000)) + 4)
	if err != nil {
		return voice{}, err
	}

	shifted, err := spectrum.NewFrame(n)
	if err != nil {
		return voice{}, err
	}

	return voice{
		vocoder: voc,
		formant: fp,
		synth:   synth,
		onset:   onset,
		shifted: shifted,
		frame:   make([]float64, n),
		out:     make([]float64, hop),
		ratio:   1,
	}, nil
}

// configure applies new user parameters. Changes to Enabled take effect
// through the fade in advanceFade and the flush in update.
func (v *voice) configure(p VoiceParams, sampleRate float64) {
	v.params = p
	v.onsetSamples = p.OnsetDelayMs * sampleRate / 1000

	angle := (p.Pan + 1) * math.Pi / 4
	v.panL = math.Cos(angle)
	v.panR = math.Sin(angle)
}

// flush clears the pipeline, as for a new note.
func (v *voice) flush() {
	v.vocoder.Reset()
	v.formant.Reset()
	v.synth.Reset()
	v.onset.Reset()
	core.Zero(v.out)
}

// start puts the voice into its steady state without a fade.
func (v *voice) start() {
	v.flush()
	v.ratio = 1
	v.idle = !v.params.Enabled

	v.fade = 0
	if v.params.Enabled {
		v.fade = 1
	}
}

// update runs the per-hop state transitions and ratio smoothing. target is
// the unsmoothed pitch ratio, coef the smoothing coefficient per hop.
func (v *voice) update(target, coef float64) {
	switch {
	case v.idle && v.params.Enabled:
		v.flush()
		v.idle = false
		v.ratio = target
	case !v.idle && !v.params.Enabled && v.fade == 0:
		v.flush()
		v.idle = true
	}

	v.ratio += coef * (target - v.ratio)
}

// render shifts analysis into the voice's synthesizer and reports whether
// the hop was a transient. envelope holds the captured input envelope when
// formant preservation is in use.
func (v *voice) render(analysis *spectrum.Frame, envelope *pitch.FormantPreserver, transform *spectrum.Transform) bool {
	ratio := core.Clamp(v.ratio, pitch.MinPitchRatio, pitch.MaxPitchRatio)
	_ = v.vocoder.SetPitchRatio(ratio)

	transient := v.vocoder.Shift(analysis, v.shifted)

	if v.params.FormantPreserve {
		v.formant.CaptureFrom(envelope)
		_ = v.formant.Apply(v.shifted, core.RatioToSemitones(ratio))
	}

	_ = transform.Inverse(v.shifted, v.frame)
	v.synth.AccumulateSynthesisFrame(v.frame)

	return transient
}

// advanceFade moves the fade gain one sample towards the enabled state.
func (v *voice) advanceFade(step float64) {
	if v.params.Enabled {
		if v.fade < 1 {
			v.fade = min(1, v.fade+step)
		}

		return
	}

	if v.fade > 0 {
		v.fade = max(0, v.fade-step)
	}
}
