package pitch_test

import (
	"fmt"

	"github.com/cwbudde/algo-harmonizer/dsp/effects/pitch"
	"github.com/cwbudde/algo-harmonizer/internal/testutil"
)

func ExampleDetector() {
	d, err := pitch.NewDetector(48000)
	if err != nil {
		fmt.Println(err)
		return
	}

	est := d.Process(testutil.DeterministicSine(440, 48000, 0.5, d.WindowSize()))
	fmt.Printf("valid=%v freq=%.0f Hz\n", est.Valid, est.FrequencyHz)
	// Output: valid=true freq=440 Hz
}

func ExampleFormantPreserver_CorrectionWeight() {
	fp, err := pitch.NewFormantPreserver(2048, 48000)
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, st := range []float64{3, 7, 9.5, 12} {
		fmt.Printf("%4.1f semitones: %.2f\n", st, fp.CorrectionWeight(st))
	}
	// Output:
	//  3.0 semitones: 1.00
	//  7.0 semitones: 1.00
	//  9.5 semitones: 0.50
	// 12.0 semitones: 0.00
}
