// Package stft implements streaming short-time Fourier framing: windowed
// analysis frames cut from a continuous input and windowed overlap-add
// resynthesis back into a continuous output.
//
// An [Analyzer] buffers input and yields one analysis frame per hop. A
// [Synthesizer] overlap-adds processed frames and releases one hop of
// finished output per frame. [Framer] pairs the two for the common
// one-in/one-out case; a harmonizer uses one Analyzer feeding several
// Synthesizers.
//
// The analysis and synthesis windows are the same periodic shape. Their
// product must satisfy the constant overlap-add condition at the hop size,
// so an unmodified frame stream reconstructs the input exactly, delayed by
// the transform size.
package stft
