// Package harmony maps detected pitches to diatonic harmony intervals.
//
// A [Context] names a key root and a [Scale]. [Interval] snaps an input
// frequency to the nearest scale degree and returns the semitone shift that
// reaches the requested diatonic step (3 = a third above, -3 = a third
// below) inside that scale. Everything in this package is pure and
// allocation-free, so it may run on the audio goroutine.
package harmony
