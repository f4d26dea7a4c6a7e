package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/willzfarmer/gristle"
	"github.com/willzfarmer/gristle/internal/logger"
)

func newScalarCommand(a *app) *cobra.Command {
	var (
		flags      dialectFlags
		column     int
		typeName   string
		actionName string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "scalar [file...]",
		Short: "Compute min, max, sum or average of a column across files",
		Long: `scalar folds one column of every input into a single value. Each file
is detected on its own. Empty files contribute nothing, and when no values
are found nothing is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			hints, err := flags.hints(cmd)
			if err != nil {
				return err
			}
			typ, err := gristle.ParseScalarType(typeName)
			if err != nil {
				return err
			}
			action, err := gristle.ParseScalarAction(actionName)
			if err != nil {
				return err
			}
			agg, err := gristle.NewScalarAggregator(typ, action)
			if err != nil {
				return err
			}

			paths := args
			if len(paths) == 0 {
				paths = []string{gristle.StdioPath}
			}
			for _, path := range paths {
				if err := a.aggregateScalar(cmd, path, hints, column, agg); err != nil {
					return err
				}
			}

			result, err := agg.Result()
			if errors.Is(err, gristle.ErrNoValues) {
				logger.Warnf("no %s values found in column %d", typ, column)
				return nil
			}
			if err != nil {
				return err
			}

			out, err := gristle.CreateOutput(output, a.streams.Out)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(out, result); err != nil {
				_ = out.Close()
				return err
			}
			return out.Close()
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&column, "column", "c", 0, "Column to aggregate (0-based)")
	cmd.Flags().StringVarP(&typeName, "type", "t", "integer", "Value type: integer, float or string")
	cmd.Flags().StringVarP(&actionName, "action", "a", "max", "Aggregate: min, max, sum or avg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func (a *app) aggregateScalar(cmd *cobra.Command, path string, hints gristle.Hints, column int, agg *gristle.ScalarAggregator) error {
	in, err := gristle.OpenInput(path, a.streams.In)
	if err != nil {
		return err
	}
	defer in.Close()

	src, dialect, err := in.Records(cmd.Context(), a.detector(), hints)
	if err != nil {
		return err
	}
	logger.Debugf("reading %s with %s", in, dialect)
	return gristle.AggregateScalar(cmd.Context(), src, column, agg,
		gristle.WithScalarSkipHeader(dialect.HasHeader),
		gristle.WithScalarLogger(logger.Logger()))
}
