package cli

import (
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/willzfarmer/gristle"
	"github.com/willzfarmer/gristle/internal/logger"
)

func newConvertCommand(a *app) *cobra.Command {
	var (
		flags              dialectFlags
		output             string
		outDelimiter       string
		outRecordDelimiter string
		outHasHeader       bool
		pipelined          bool
		queueSize          int
	)

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a delimited file to another dialect",
		Long: `convert reads a file in its detected (or given) dialect and writes every
record with the output delimiter and record delimiter. An input header is
dropped unless --outhasheader is set. Reads stdin when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			hints, err := flags.hints(cmd)
			if err != nil {
				return err
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

			// the output is only created once the input dialect is known
			src, dialect, err := in.Records(cmd.Context(), a.detector(), hints)
			if err != nil {
				return err
			}
			logger.Debugf("reading %s with %s", in, dialect)

			out, err := gristle.CreateOutput(output, a.streams.Out)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := out.Close(); closeErr != nil {
					err = multierror.Append(err, closeErr).ErrorOrNil()
				}
			}()

			options := gristle.NewConvertOptions().
				WithHints(hints).
				WithOutputDelimiter(unescape(outDelimiter)).
				WithOutputRecordDelimiter(unescape(outRecordDelimiter)).
				WithKeepHeader(outHasHeader).
				WithLogger(logger.Logger())
			if pipelined || a.cfg.Convert.Pipelined {
				size := a.cfg.Convert.QueueSize
				if cmd.Flags().Changed("queue-size") {
					size = queueSize
				}
				options = options.WithPipeline(size)
			}

			stats, err := gristle.ConvertRecords(cmd.Context(), src, dialect, out, options)
			if err != nil {
				return err
			}
			logger.Infof("converted %d of %d records from %s", stats.Written, stats.Records, in.Path)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout); .gz, .xz and .zst are compressed")
	cmd.Flags().StringVarP(&outDelimiter, "outdelimiter", "D", "", "Output field delimiter (default: input delimiter)")
	cmd.Flags().StringVarP(&outRecordDelimiter, "outrecdelimiter", "R", "", "Output end-of-record delimiter")
	cmd.Flags().BoolVarP(&outHasHeader, "outhasheader", "H", false, "Keep the input header in the output")
	cmd.Flags().BoolVar(&pipelined, "pipeline", false, "Read and write in separate goroutines")
	cmd.Flags().IntVar(&queueSize, "queue-size", gristle.DefaultQueueSize, "Records buffered between pipeline stages")
	return cmd
}
