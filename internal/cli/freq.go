package cli

import (
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/willzfarmer/gristle"
	"github.com/willzfarmer/gristle/internal/logger"
)

func newFreqCommand(a *app) *cobra.Command {
	var (
		flags       dialectFlags
		column      int
		output      string
		maxDistinct int
	)

	cmd := &cobra.Command{
		Use:   "freq [file]",
		Short: "Count the distinct values of a column",
		Long: `freq counts how often each value of a column occurs and prints the values
most frequent first. Counting stops at the first new value once the
distinct value limit is reached.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			hints, err := flags.hints(cmd)
			if err != nil {
				return err
			}
			limit := a.cfg.Freq.MaxDistinct
			if cmd.Flags().Changed("max-distinct") {
				limit = maxDistinct
			}

			in, err := gristle.OpenInput(inputPath(args), a.streams.In)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := in.Close(); closeErr != nil {
					err = multierror.Append(err, closeErr).ErrorOrNil()
				}
			}()

			src, dialect, err := in.Records(cmd.Context(), a.detector(), hints)
			if err != nil {
				return err
			}

			table, stats, err := gristle.AggregateFrequency(cmd.Context(), src, column,
				gristle.WithMaxDistinct(limit),
				gristle.WithSkipHeader(dialect.HasHeader),
				gristle.WithFrequencyLogger(logger.Logger()))
			if err != nil {
				return err
			}
			if stats.Truncated {
				logger.Warnf("%s: stopped after %d distinct values, counts are partial", in.Path, limit)
			}

			out, err := gristle.CreateOutput(output, a.streams.Out)
			if err != nil {
				return err
			}
			if err := gristle.WriteFrequency(out, table.Entries()); err != nil {
				_ = out.Close()
				return err
			}
			return out.Close()
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&column, "column", "c", 0, "Column to count (0-based)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().IntVar(&maxDistinct, "max-distinct", gristle.DefaultMaxDistinct, "Stop counting after this many distinct values")
	return cmd
}
