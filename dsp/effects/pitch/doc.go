// Package pitch provides the pitch analysis and pitch shifting stages of the
// harmonizer.
//
// Included processors:
//   - Detector: fundamental frequency estimation with the normalized square
//     difference function.
//   - PhaseVocoder: spectral pitch shifting by bin remapping with identity
//     phase locking and transient phase reset.
//   - EnvelopeEstimator and FormantPreserver: cepstral spectral envelope
//     estimation and re-imposition after a shift.
//
// All processors allocate at construction only.
package pitch
