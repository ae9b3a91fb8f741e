package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/cwbudde/algo-harmonizer/dsp/stft"
	"github.com/cwbudde/algo-harmonizer/dsp/window"
	"github.com/spf13/cobra"
)

type colaOptions struct {
	size int
	hop  int
}

func newColaCmd() *cobra.Command {
	opts := &colaOptions{}

	cmd := &cobra.Command{
		Use:   "cola [window-name ...]",
		Short: "Check STFT framing configurations",
		Long: `cola prints the overlap-add gain and ripple of the squared periodic
window at the given transform and hop size, and whether the engine accepts
the configuration. Without arguments all windows are listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			types := window.Types()
			if len(args) > 0 {
				types = types[:0:0]

				for _, name := range args {
					t, err := window.ParseType(name)
					if err != nil {
						return err
					}

					types = append(types, t)
				}
			}

			return printCOLA(cmd, types, opts.size, opts.hop)
		},
	}

	cmd.Flags().IntVar(&opts.size, "size", 2048, "transform size in samples")
	cmd.Flags().IntVar(&opts.hop, "hop", 512, "hop size in samples")

	return cmd
}

func printCOLA(cmd *cobra.Command, types []window.Type, size, hop int) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintf(tw, "Window\tSize\tHop\tGain\tRipple\tUsable\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}

	for _, t := range types {
		w := window.Generate(t, size, window.WithPeriodic())
		product := make([]float64, size)

		if err := window.Product(product, w, w); err != nil {
			return err
		}

		gain, ripple := window.OverlapAddGain(product, hop)

		usable := "yes"
		if _, _, err := stft.Validate(size, hop, t); err != nil {
			usable = "no"
		}

		if _, err := fmt.Fprintf(tw, "%s\t%d\t%d\t%.6f\t%.3g\t%s\n", t, size, hop, gain, ripple, usable); err != nil {
			return fmt.Errorf("failed to write output row: %w", err)
		}
	}

	return tw.Flush()
}
