// Package harmonizer provides a real-time multi-voice diatonic harmonizer.
//
// An Engine detects the pitch of a monophonic input once per analysis hop,
// derives a diatonic interval for every voice from the current key, and
// runs one phase vocoder and formant preserver per voice. The shifted
// voices are delayed, gain-staged, panned and mixed with an optional
// latency-aligned dry signal.
//
// Prepare allocates everything. Process and ProcessStereo are
// allocation-free and must be called from a single goroutine. Setters and
// diagnostics are safe to call from other goroutines; control changes take
// effect at the next hop boundary.
package harmonizer
