// Package fastmath selects the log/exp implementation used by per-bin
// spectral loops.
//
// The default build uses the standard library. Building with the fastmath
// tag switches to the polynomial approximations of algo-approx, which are
// accurate to well below the 0.1 dB level the cepstral envelope needs.
package fastmath
