package stft

import (
	"github.com/cwbudde/algo-harmonizer/dsp/core"
	"github.com/cwbudde/algo-harmonizer/dsp/window"
)

const (
	// MinTransformSize is the smallest supported transform size.
	MinTransformSize = 64
	// MaxTransformSize is the largest supported transform size.
	MaxTransformSize = 16384
)

// Validate checks a framing configuration and returns the periodic window
// and the overlap-add gain of the analysis/synthesis window product.
//
// transformSize must be a power of two in [MinTransformSize,
// MaxTransformSize], hopSize must divide it and be at most half of it, and
// the squared window must be COLA at hopSize within
// [window.DefaultCOLATolerance]. Violations are reported as
// *core.ConfigError.
func Validate(transformSize, hopSize int, shape window.Type) ([]float64, float64, error) {
	if !core.IsPowerOfTwo(transformSize) || transformSize < MinTransformSize || transformSize > MaxTransformSize {
		return nil, 0, core.NewConfigError("stft", "transform size", transformSize,
			"must be a power of two in [64, 16384]")
	}

	if hopSize <= 0 || hopSize > transformSize/2 || transformSize%hopSize != 0 {
		return nil, 0, core.NewConfigError("stft", "hop size", hopSize,
			"must divide the transform size and be at most half of it")
	}

	if window.Info(shape).Name == "" {
		return nil, 0, core.NewConfigError("stft", "window", shape, "unknown window type")
	}

	win := window.Generate(shape, transformSize, window.WithPeriodic())

	product := make([]float64, transformSize)
	if err := window.Product(product, win, win); err != nil {
		return nil, 0, err
	}

	gain, err := window.CheckCOLA(product, hopSize, window.DefaultCOLATolerance)
	if err != nil {
		return nil, 0, core.NewConfigError("stft", "window", shape.String(),
			"analysis*synthesis product is not COLA at this hop")
	}

	return win, gain, nil
}
