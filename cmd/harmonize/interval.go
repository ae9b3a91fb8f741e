package main

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/algo-harmonizer/dsp/harmony"
	"github.com/spf13/cobra"
)

type intervalOptions struct {
	key   string
	scale string
	step  int
	a4    float64
}

func newIntervalCmd() *cobra.Command {
	opts := &intervalOptions{}

	cmd := &cobra.Command{
		Use:   "interval <note|hz>...",
		Short: "Print the diatonic interval for input notes",
		Long: `interval prints the semitone shift and the target note for a diatonic
step above each input. Inputs are note names such as C4 or F#3, or
frequencies in Hz.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := harmony.ParsePitchClass(opts.key)
			if err != nil {
				return err
			}

			scale, err := harmony.ParseScale(opts.scale)
			if err != nil {
				return err
			}

			calc, err := harmony.NewCalculator(harmony.Context{Root: root, Scale: scale}, opts.a4)
			if err != nil {
				return err
			}

			for _, arg := range args {
				hz, err := parseFrequency(arg, opts.a4)
				if err != nil {
					return err
				}

				note, _ := harmony.FrequencyToNote(hz, opts.a4)
				shift := calc.Interval(hz, opts.step)

				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%+d)\n",
					harmony.NoteName(note), harmony.NoteName(note+shift), shift)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.key, "key", "C", "key root")
	cmd.Flags().StringVar(&opts.scale, "scale", "major", "scale name")
	cmd.Flags().IntVar(&opts.step, "step", 3, "diatonic step (3 = third above, -3 = third below)")
	cmd.Flags().Float64Var(&opts.a4, "a4", harmony.DefaultReferencePitch, "reference pitch of A4 in Hz")

	return cmd
}

// parseFrequency accepts a frequency in Hz or a note name.
func parseFrequency(arg string, a4 float64) (float64, error) {
	if hz, err := strconv.ParseFloat(arg, 64); err == nil {
		if !(hz > 0) {
			return 0, fmt.Errorf("frequency must be positive: %v", hz)
		}

		return hz, nil
	}

	note, err := harmony.ParseNote(arg)
	if err != nil {
		return 0, err
	}

	return harmony.NoteToFrequency(note, a4), nil
}
