package testutil

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// DominantFrequency returns the frequency of the strongest non-DC component
// of x, refined by parabolic interpolation of the Hann-windowed log
// magnitude spectrum. It uses gonum's FFT so that results do not depend on
// the transform under test.
func DominantFrequency(x []float64, sampleRate float64) float64 {
	n := len(x)
	if n < 4 {
		return 0
	}

	windowed := make([]float64, n)
	for i, v := range x {
		windowed[i] = v * (0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n)))
	}

	coeffs := fourier.NewFFT(n).Coefficients(nil, windowed)

	best := 1
	for k := 2; k < len(coeffs)-1; k++ {
		if cmplx.Abs(coeffs[k]) > cmplx.Abs(coeffs[best]) {
			best = k
		}
	}

	pos := float64(best)
	if best > 0 && best < len(coeffs)-1 {
		a := math.Log(cmplx.Abs(coeffs[best-1]) + 1e-300)
		b := math.Log(cmplx.Abs(coeffs[best]) + 1e-300)
		c := math.Log(cmplx.Abs(coeffs[best+1]) + 1e-300)

		if den := a - 2*b + c; den != 0 {
			pos += 0.5 * (a - c) / den
		}
	}

	return pos * sampleRate / float64(n)
}
