package harmonizer

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-harmonizer/dsp/core"
	"github.com/cwbudde/algo-harmonizer/dsp/delay"
	"github.com/cwbudde/algo-harmonizer/dsp/effects/pitch"
	"github.com/cwbudde/algo-harmonizer/dsp/harmony"
	"github.com/cwbudde/algo-harmonizer/dsp/spectrum"
	"github.com/cwbudde/algo-harmonizer/dsp/stft"
)

// Engine is a multi-voice diatonic harmonizer for a mono input.
type Engine struct {
	cfg  config
	ctl  *controls
	diag diagnostics

	prepared   bool
	sampleRate float64
	maxBlock   int

	analyzer  *stft.Analyzer
	transform *spectrum.Transform
	frame     []float64
	analysis  *spectrum.Frame

	detector *pitch.Detector
	history  *delay.Line
	histBuf  []float64
	dry      *delay.Line
	envelope *pitch.FormantPreserver

	voices [MaxVoices]voice

	// State applied from ctl at hop boundaries.
	appliedGen uint64
	ctx        harmony.Context
	wetGain    float64
	dryGain    float64
	minHz      float64
	maxHz      float64

	held      pitch.Estimate
	smoothing float64
	fadeStep  float64
}

// New returns an engine with the given options. Framing is validated here;
// everything that depends on the sample rate is validated by Prepare.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg, ctl: newControls()}
	e.ctl.voiceCount.Store(int32(cfg.voices))

	return e, nil
}

// Prepare allocates all processing state for sampleRate and blocks of up
// to maxBlockSize samples and resets the engine. It also applies a voice
// count set with SetVoices. On error the engine keeps its previous state.
// Prepare must not run concurrently with Process.
func (e *Engine) Prepare(sampleRate float64, maxBlockSize int) error {
	pc := core.ProcessorConfig{SampleRate: sampleRate, BlockSize: maxBlockSize}
	if err := pc.Validate("harmonizer"); err != nil {
		return err
	}

	n, hop, shape := e.cfg.transformSize, e.cfg.hopSize, e.cfg.shape

	analyzer, err := stft.NewAnalyzer(n, hop, shape)
	if err != nil {
		return err
	}

	transform, err := spectrum.NewTransform(n)
	if err != nil {
		return fmt.Errorf("harmonizer: %w", err)
	}

	analysis, err := spectrum.NewFrame(n)
	if err != nil {
		return fmt.Errorf("harmonizer: %w", err)
	}

	detector, err := pitch.NewDetector(sampleRate, e.cfg.detectorOpts...)
	if err != nil {
		return err
	}

	history, err := delay.New(detector.WindowSize())
	if err != nil {
		return fmt.Errorf("harmonizer: %w", err)
	}

	dry, err := delay.New(n + 1)
	if err != nil {
		return fmt.Errorf("harmonizer: %w", err)
	}

	envelope, err := pitch.NewFormantPreserver(n, sampleRate, e.cfg.formantOpts...)
	if err != nil {
		return err
	}

	count := int(e.ctl.voiceCount.Load())

	var voices [MaxVoices]voice
	for i := range count {
		if voices[i], err = newVoice(e.cfg, sampleRate); err != nil {
			return err
		}
	}

	e.cfg.voices = count
	e.sampleRate = sampleRate
	e.maxBlock = maxBlockSize
	e.analyzer = analyzer
	e.transform = transform
	e.frame = make([]float64, n)
	e.analysis = analysis
	e.detector = detector
	e.history = history
	e.histBuf = make([]float64, detector.WindowSize())
	e.dry = dry
	e.envelope = envelope
	e.voices = voices

	e.smoothing = 1
	if tau := e.cfg.smoothingMs / 1000 * sampleRate; tau > 0 {
		e.smoothing = 1 - math.Exp(-float64(hop)/tau)
	}

	e.fadeStep = 1
	if samples := e.cfg.fadeMs / 1000 * sampleRate; samples > 1 {
		e.fadeStep = 1 / samples
	}

	e.minHz, e.maxHz = detector.FrequencyRange()
	e.prepared = true
	e.Reset()

	return nil
}

// Reset clears detector, framing, vocoder, formant, smoothing and delay
// state and applies pending control values. Configuration is kept.
func (e *Engine) Reset() {
	if !e.prepared {
		return
	}

	e.analyzer.Reset()
	e.detector.Reset()
	e.history.Reset()
	e.dry.Reset()
	e.envelope.Reset()
	e.held = pitch.Estimate{}
	e.diag.clear()

	e.applyControls()

	for i := range e.cfg.voices {
		e.voices[i].start()
	}

	e.publish()
}

// Process harmonizes in into out. Voice pans are ignored. It processes
// min(len(in), len(out)) samples.
func (e *Engine) Process(in, out []float64) Status {
	n := min(len(in), len(out))
	return e.process(in[:n], out[:n], nil)
}

// ProcessStereo harmonizes in into left and right with each voice placed
// by a constant-power pan law. It processes the shortest of the three
// lengths.
func (e *Engine) ProcessStereo(in, left, right []float64) Status {
	n := min(len(in), len(left), len(right))
	return e.process(in[:n], left[:n], right[:n])
}

// process runs the engine in hop-aligned chunks. right is nil for mono
// output.
func (e *Engine) process(in, left, right []float64) Status {
	if !e.prepared || len(in) > e.maxBlock {
		core.Zero(left)

		if right != nil {
			core.Zero(right)
		}

		if !e.prepared {
			return StatusNotPrepared
		}

		return StatusBlockTooLarge
	}

	status := StatusOK

	for pos := 0; pos < len(in); {
		m := e.analyzer.PushSamples(in[pos:])
		for i := range e.cfg.voices {
			e.voices[i].synth.PullSamples(e.voices[i].out[:m])
		}

		end := pos + m
		if right != nil {
			e.mix(in[pos:end], left[pos:end], right[pos:end])
		} else {
			e.mix(in[pos:end], left[pos:end], nil)
		}

		pos = end

		if e.analyzer.NextAnalysisFrame(e.frame) && e.hop() {
			status |= StatusTransient
		}
	}

	if e.analyzer.TakeSanitized() > 0 {
		status |= StatusInputSanitized
	}

	return status
}

// mix renders one chunk of at most one hop.
func (e *Engine) mix(in, left, right []float64) {
	latency := e.cfg.transformSize

	for j, x := range in {
		x = core.Sanitize(x)
		e.history.Write(x)
		e.dry.Write(x)

		var l, r float64

		for i := range e.cfg.voices {
			v := &e.voices[i]
			if v.idle {
				continue
			}

			v.advanceFade(e.fadeStep)
			s := v.onset.Process(v.out[j], v.onsetSamples) * v.params.Level * v.fade

			if right != nil {
				l += s * v.panL
				r += s * v.panR
			} else {
				l += s
			}
		}

		dry := e.dryGain * e.dry.Read(latency)
		left[j] = e.wetGain*l + dry

		if right != nil {
			right[j] = e.wetGain*r + dry
		}
	}
}

// hop runs the per-hop pipeline on the analysis frame in e.frame and
// reports whether any voice saw a transient.
func (e *Engine) hop() bool {
	if gen := e.ctl.generation.Load(); gen != e.appliedGen {
		e.applyControls()
	}

	e.history.Latest(e.histBuf)
	if est := e.detector.Process(e.histBuf); est.Valid {
		e.held = est
	}

	_ = e.transform.Forward(e.frame, e.analysis)

	needEnvelope := false

	for i := range e.cfg.voices {
		v := &e.voices[i]
		v.update(e.targetRatio(v.params.Step), e.smoothing)

		if !v.idle && v.params.FormantPreserve {
			needEnvelope = true
		}
	}

	if needEnvelope {
		_ = e.envelope.CaptureEnvelope(e.analysis)
	}

	transient := false

	for i := range e.cfg.voices {
		v := &e.voices[i]
		if !v.idle && v.render(e.analysis, e.envelope, e.transform) {
			transient = true
		}
	}

	e.publish()

	return transient
}

// targetRatio returns the unsmoothed pitch ratio for step above the held
// pitch. Before any pitch was detected every voice is at unison.
func (e *Engine) targetRatio(step int) float64 {
	if !e.held.Valid {
		return 1
	}

	semitones := harmony.IntervalAt(e.ctx, e.held.FrequencyHz, e.cfg.referenceA4, step)

	return core.Clamp(core.SemitonesToRatio(float64(semitones)), pitch.MinPitchRatio, pitch.MaxPitchRatio)
}

// applyControls copies the control values into the audio-side state.
func (e *Engine) applyControls() {
	e.appliedGen = e.ctl.generation.Load()
	e.ctx = *e.ctl.context.Load()
	e.wetGain = e.ctl.mix.Load()

	e.dryGain = 0
	if e.ctl.dry.Load() {
		e.dryGain = e.ctl.dryLevel.Load()
	}

	minHz, maxHz := e.ctl.minHz.Load(), e.ctl.maxHz.Load()
	if e.ctl.rangeSet.Load() && (minHz != e.minHz || maxHz != e.maxHz) {
		if e.detector.SetFrequencyRange(minHz, maxHz) == nil {
			e.minHz, e.maxHz = minHz, maxHz
		}
	}

	for i := range e.cfg.voices {
		e.voices[i].configure(e.ctl.voices[i].load(), e.sampleRate)
	}
}

func (e *Engine) publish() {
	e.diag.held.store(e.held)

	active := 0

	for i := range e.cfg.voices {
		v := &e.voices[i]
		e.diag.semitones[i].Store(core.RatioToSemitones(v.ratio))

		conf := 0.0
		if !v.idle {
			active++
			conf = e.held.Confidence
		}

		e.diag.confidence[i].Store(conf)
	}

	e.diag.active.Store(int32(active))
}
