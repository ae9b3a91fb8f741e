// Command harmonize renders and inspects diatonic harmonies.
//
// Usage:
//
//	harmonize render -p preset.yaml in.wav out.wav
//	harmonize interval --key D --scale dorian --step 3 D4 F4 440
//	harmonize cola --size 2048 --hop 512
//
// render reads a mono or multi-channel WAV file (channels are averaged),
// runs it through the harmonizer configured by a YAML preset and writes a
// stereo WAV file.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
