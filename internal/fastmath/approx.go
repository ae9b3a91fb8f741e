//go:build fastmath

package fastmath

import "github.com/meko-christian/algo-approx"

// Log returns an approximation of the natural logarithm of x.
func Log(x float64) float64 { return approx.FastLog(x) }

// Exp returns an approximation of e**x.
func Exp(x float64) float64 { return approx.FastExp(x) }
