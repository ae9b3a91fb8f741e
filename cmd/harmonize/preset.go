package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/algo-harmonizer/dsp/effects/harmonizer"
	"github.com/cwbudde/algo-harmonizer/dsp/effects/pitch"
	"github.com/cwbudde/algo-harmonizer/dsp/harmony"
	"github.com/cwbudde/algo-harmonizer/dsp/window"
	"github.com/goccy/go-yaml"
)

// Preset is a harmonizer configuration stored as YAML.
type Preset struct {
	Key            string  `yaml:"key"`
	Scale          string  `yaml:"scale"`
	ReferencePitch float64 `yaml:"reference_pitch,omitempty"`

	TransformSize int     `yaml:"transform_size,omitempty"`
	HopSize       int     `yaml:"hop_size,omitempty"`
	Window        string  `yaml:"window,omitempty"`
	SmoothingMs   float64 `yaml:"smoothing_ms,omitempty"`
	FadeMs        float64 `yaml:"fade_ms,omitempty"`

	MinHz float64 `yaml:"min_hz,omitempty"`
	MaxHz float64 `yaml:"max_hz,omitempty"`

	// Mix is the wet gain; nil means 1.
	Mix        *float64 `yaml:"mix,omitempty"`
	DryEnabled bool     `yaml:"dry_enabled,omitempty"`
	DryLevel   *float64 `yaml:"dry_level,omitempty"`

	Voices []VoicePreset `yaml:"voices"`
}

// VoicePreset configures one voice. Omitted fields take the engine
// defaults.
type VoicePreset struct {
	Step    int      `yaml:"step"`
	Level   *float64 `yaml:"level,omitempty"`
	Pan     float64  `yaml:"pan,omitempty"`
	OnsetMs float64  `yaml:"onset_ms,omitempty"`
	Formant *bool    `yaml:"formant,omitempty"`
	Enabled *bool    `yaml:"enabled,omitempty"`
}

// DefaultPreset returns a third above in C major.
func DefaultPreset() *Preset {
	return &Preset{
		Key:    "C",
		Scale:  "major",
		Voices: []VoicePreset{{Step: 3}},
	}
}

// LoadPreset reads a preset from a YAML file.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}

	return ParsePreset(data)
}

// ParsePreset decodes and validates a YAML preset.
func ParsePreset(data []byte) (*Preset, error) {
	p := &Preset{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse preset: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks the fields that the engine would otherwise silently
// clamp or reject late.
func (p *Preset) Validate() error {
	if _, err := p.Context(); err != nil {
		return err
	}

	if n := len(p.Voices); n < 1 || n > harmonizer.MaxVoices {
		return fmt.Errorf("preset: need 1 to %d voices, got %d", harmonizer.MaxVoices, n)
	}

	if p.Window != "" {
		if _, err := window.ParseType(p.Window); err != nil {
			return fmt.Errorf("preset: %w", err)
		}
	}

	if (p.MinHz != 0 || p.MaxHz != 0) && (p.MinHz <= 0 || p.MaxHz <= p.MinHz) {
		return fmt.Errorf("preset: need 0 < min_hz < max_hz, got %v and %v", p.MinHz, p.MaxHz)
	}

	for i, v := range p.Voices {
		if v.Step < -harmonizer.MaxStep || v.Step > harmonizer.MaxStep {
			return fmt.Errorf("preset: voice %d: step must be in [-%d, %d]: %d",
				i, harmonizer.MaxStep, harmonizer.MaxStep, v.Step)
		}

		if v.Pan < -1 || v.Pan > 1 {
			return fmt.Errorf("preset: voice %d: pan must be in [-1, 1]: %v", i, v.Pan)
		}

		if v.OnsetMs < 0 || v.OnsetMs > harmonizer.MaxOnsetDelayMs {
			return fmt.Errorf("preset: voice %d: onset_ms must be in [0, %g]: %v", i, harmonizer.MaxOnsetDelayMs, v.OnsetMs)
		}
	}

	return nil
}

// Context returns the preset's key and scale.
func (p *Preset) Context() (harmony.Context, error) {
	root, err := harmony.ParsePitchClass(p.Key)
	if err != nil {
		return harmony.Context{}, fmt.Errorf("preset: key: %w", err)
	}

	scale, err := harmony.ParseScale(p.Scale)
	if err != nil {
		return harmony.Context{}, fmt.Errorf("preset: scale: %w", err)
	}

	return harmony.Context{Root: root, Scale: scale}, nil
}

// EngineOptions returns the construction options the preset implies.
func (p *Preset) EngineOptions() ([]harmonizer.Option, error) {
	opts := []harmonizer.Option{harmonizer.WithVoices(len(p.Voices))}

	if p.TransformSize != 0 {
		opts = append(opts, harmonizer.WithTransformSize(p.TransformSize))
	}

	if p.HopSize != 0 {
		opts = append(opts, harmonizer.WithHopSize(p.HopSize))
	}

	if p.Window != "" {
		t, err := window.ParseType(p.Window)
		if err != nil {
			return nil, fmt.Errorf("preset: %w", err)
		}

		opts = append(opts, harmonizer.WithWindow(t))
	}

	if p.SmoothingMs != 0 {
		opts = append(opts, harmonizer.WithSmoothing(p.SmoothingMs))
	}

	if p.FadeMs != 0 {
		opts = append(opts, harmonizer.WithFadeTime(p.FadeMs))
	}

	if p.ReferencePitch != 0 {
		opts = append(opts, harmonizer.WithReferencePitch(p.ReferencePitch))
	}

	if p.MinHz != 0 {
		opts = append(opts, harmonizer.WithDetectorOptions(pitch.WithFrequencyRange(p.MinHz, p.MaxHz)))
	}

	return opts, nil
}

// Apply sets key, scale, mix and voice controls on e.
func (p *Preset) Apply(e *harmonizer.Engine) error {
	ctx, err := p.Context()
	if err != nil {
		return err
	}

	if err := e.SetContext(ctx); err != nil {
		return err
	}

	if p.Mix != nil {
		e.SetMix(*p.Mix)
	}

	dryLevel := 1.0
	if p.DryLevel != nil {
		dryLevel = *p.DryLevel
	}

	e.SetDry(p.DryEnabled, dryLevel)

	for i, v := range p.Voices {
		if err := e.SetVoiceParams(i, v.params(i)); err != nil {
			return err
		}
	}

	return nil
}

func (v VoicePreset) params(i int) harmonizer.VoiceParams {
	params := harmonizer.DefaultVoiceParams(i)
	params.Step = v.Step
	params.Pan = v.Pan
	params.OnsetDelayMs = v.OnsetMs

	if v.Level != nil {
		params.Level = *v.Level
	}

	if v.Formant != nil {
		params.FormantPreserve = *v.Formant
	}

	if v.Enabled != nil {
		params.Enabled = *v.Enabled
	}

	return params
}
