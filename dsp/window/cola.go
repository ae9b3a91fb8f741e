package window

import (
	"fmt"
	"math"
)

// DefaultCOLATolerance is the relative ripple accepted by [CheckCOLA].
const DefaultCOLATolerance = 1e-9

// OverlapAddGain sums coeffs shifted by multiples of hop and returns the mean
// overlap-add gain and its relative ripple ((max-min)/mean) over one hop.
func OverlapAddGain(coeffs []float64, hop int) (gain, ripple float64) {
	n := len(coeffs)
	if n == 0 || hop <= 0 {
		return 0, math.Inf(1)
	}

	lo := math.Inf(1)
	hi := math.Inf(-1)
	sum := 0.0

	for i := range hop {
		acc := 0.0
		for j := i; j < n; j += hop {
			acc += coeffs[j]
		}

		lo = math.Min(lo, acc)
		hi = math.Max(hi, acc)
		sum += acc
	}

	gain = sum / float64(hop)
	if gain == 0 {
		return 0, math.Inf(1)
	}

	return gain, (hi - lo) / math.Abs(gain)
}

// CheckCOLA verifies the constant overlap-add property of coeffs at hop.
// For an analysis/synthesis pair, pass the element-wise product of both
// windows. It returns the overlap-add gain the output must be divided by.
func CheckCOLA(coeffs []float64, hop int, tolerance float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	if hop <= 0 || hop > len(coeffs) || len(coeffs)%hop != 0 {
		return 0, fmt.Errorf("window: hop must divide the window length %d: %d", len(coeffs), hop)
	}

	if tolerance <= 0 {
		tolerance = DefaultCOLATolerance
	}

	gain, ripple := OverlapAddGain(coeffs, hop)
	if ripple > tolerance {
		return gain, fmt.Errorf("window: overlap-add ripple %.3g exceeds %.3g at hop %d", ripple, tolerance, hop)
	}

	return gain, nil
}
