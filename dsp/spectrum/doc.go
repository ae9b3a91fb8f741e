// Package spectrum provides the spectral frame container shared by the
// analysis, pitch-shifting and formant stages, plus small spectrum-domain
// utilities.
//
// The package intentionally does not implement FFT itself. A [Frame] is
// filled from complex bins produced by an external FFT backend and turned
// back into a Hermitian-symmetric spectrum for the inverse transform.
package spectrum
