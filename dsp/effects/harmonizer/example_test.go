package harmonizer_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-harmonizer/dsp/effects/harmonizer"
	"github.com/cwbudde/algo-harmonizer/dsp/harmony"
)

func ExampleEngine() {
	e, err := harmonizer.New(harmonizer.WithVoices(2))
	if err != nil {
		panic(err)
	}

	_ = e.SetContext(harmony.Context{Root: harmony.C, Scale: harmony.Major})
	_ = e.SetVoiceStep(0, 3)
	_ = e.SetVoiceStep(1, 5)

	if err := e.Prepare(48000, 512); err != nil {
		panic(err)
	}

	in := make([]float64, 512)
	out := make([]float64, 512)
	phase := 0.0

	for range 94 {
		for i := range in {
			in[i] = 0.5 * math.Sin(phase)
			phase += 2 * math.Pi * 261.63 / 48000
		}

		e.Process(in, out)
	}

	note, _ := harmony.FrequencyToNote(e.HeldPitch().FrequencyHz, harmony.DefaultReferencePitch)
	fmt.Printf("latency=%d input=%s\n", e.Latency(), harmony.NoteName(note))
	fmt.Printf("voice 0: %+.0f semitones\n", e.VoiceSemitones(0))
	fmt.Printf("voice 1: %+.0f semitones\n", e.VoiceSemitones(1))
	// Output:
	// latency=2048 input=C4
	// voice 0: +4 semitones
	// voice 1: +7 semitones
}
