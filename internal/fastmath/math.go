//go:build !fastmath

package fastmath

import "math"

// Log returns the natural logarithm of x.
func Log(x float64) float64 { return math.Log(x) }

// Exp returns e**x.
func Exp(x float64) float64 { return math.Exp(x) }
