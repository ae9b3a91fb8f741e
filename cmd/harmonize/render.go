package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/cwbudde/algo-harmonizer/dsp/effects/harmonizer"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/cobra"
)

const wavFormatPCM = 1

type renderOptions struct {
	preset   string
	block    int
	bitDepth int
	align    bool
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <in.wav> <out.wav>",
		Short: "Render a WAV file through the harmonizer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			preset := DefaultPreset()
			if opts.preset != "" {
				var err error
				if preset, err = LoadPreset(opts.preset); err != nil {
					return err
				}
			}

			stats, err := render(args[0], args[1], preset, opts, root.logger)
			if err != nil {
				return err
			}

			root.logger.Info("rendered",
				"samples", stats.samples,
				"sample_rate", stats.sampleRate,
				"sanitized_blocks", stats.sanitized,
				"transient_blocks", stats.transients,
				"held_hz", fmt.Sprintf("%.2f", stats.heldHz))

			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.preset, "preset", "p", "", "YAML preset (default: a third above in C major)")
	cmd.Flags().IntVar(&opts.block, "block", 512, "processing block size in samples")
	cmd.Flags().IntVar(&opts.bitDepth, "bit-depth", 0, "output bit depth, 16 or 24 (default: input bit depth)")
	cmd.Flags().BoolVar(&opts.align, "align", true, "remove the engine latency so output lines up with input")

	return cmd
}

type renderStats struct {
	samples    int
	sampleRate int
	sanitized  int
	transients int
	heldHz     float64
}

// render runs inPath through an engine configured by preset and writes a
// stereo file to outPath.
func render(inPath, outPath string, preset *Preset, opts *renderOptions, logger *slog.Logger) (renderStats, error) {
	var stats renderStats

	if opts.block <= 0 {
		return stats, fmt.Errorf("block size must be > 0: %d", opts.block)
	}

	in, rate, bitDepth, err := readMono(inPath)
	if err != nil {
		return stats, err
	}

	if opts.bitDepth != 0 {
		bitDepth = opts.bitDepth
	}

	if bitDepth != 16 && bitDepth != 24 {
		return stats, fmt.Errorf("unsupported output bit depth: %d", bitDepth)
	}

	engineOpts, err := preset.EngineOptions()
	if err != nil {
		return stats, err
	}

	e, err := harmonizer.New(engineOpts...)
	if err != nil {
		return stats, err
	}

	if err := preset.Apply(e); err != nil {
		return stats, err
	}

	if err := e.Prepare(float64(rate), opts.block); err != nil {
		return stats, err
	}

	logger.Debug("engine prepared",
		"sample_rate", rate,
		"voices", e.Voices(),
		"latency", e.Latency(),
		"context", e.Context().String())

	latency := 0
	if opts.align {
		latency = e.Latency()
	}

	total := len(in) + latency
	src := make([]float64, total)
	copy(src, in)

	left := make([]float64, total)
	right := make([]float64, total)

	for pos := 0; pos < total; pos += opts.block {
		end := min(pos+opts.block, total)

		st := e.ProcessStereo(src[pos:end], left[pos:end], right[pos:end])
		if st.Has(harmonizer.StatusInputSanitized) {
			stats.sanitized++
		}

		if st.Has(harmonizer.StatusTransient) {
			stats.transients++
			logger.Debug("transient", "sample", pos, "held_hz", e.HeldPitch().FrequencyHz)
		}
	}

	if err := writeStereo(outPath, left[latency:], right[latency:], rate, bitDepth); err != nil {
		return stats, err
	}

	stats.samples = len(in)
	stats.sampleRate = rate
	stats.heldHz = e.HeldPitch().FrequencyHz

	return stats, nil
}

// readMono decodes a PCM WAV file and averages its channels into [-1, 1]
// floats.
func readMono(path string) (samples []float64, sampleRate, bitDepth int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read audio data: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return nil, 0, 0, errors.New("input has no channels")
	}

	bitDepth = int(dec.BitDepth)
	scale := 1 / fullScale(bitDepth)
	frames := len(buf.Data) / channels

	samples = make([]float64, frames)
	for i := range frames {
		sum := 0
		for ch := range channels {
			sum += buf.Data[i*channels+ch]
		}

		samples[i] = float64(sum) * scale / float64(channels)
	}

	return samples, buf.Format.SampleRate, bitDepth, nil
}

// writeStereo encodes left and right as interleaved PCM. Samples outside
// [-1, 1] are clipped.
func writeStereo(path string, left, right []float64, sampleRate, bitDepth int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, 2, wavFormatPCM)

	peak := fullScale(bitDepth)
	data := make([]int, 2*len(left))

	for i := range left {
		data[2*i] = quantize(left[i], peak)
		data[2*i+1] = quantize(right[i], peak)
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}

	return nil
}

func fullScale(bitDepth int) float64 {
	return float64(int(1) << (bitDepth - 1))
}

func quantize(x, peak float64) int {
	v := math.Round(x * peak)
	return int(math.Max(-peak, math.Min(peak-1, v)))
}
