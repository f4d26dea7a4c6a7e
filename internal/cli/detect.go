package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/willzfarmer/gristle"
	"github.com/willzfarmer/gristle/internal/logger"
)

// detectReport is the machine readable output of the detect command.
type detectReport struct {
	Path            string `json:"path"`
	Format          string `json:"format"`
	Compression     string `json:"compression"`
	Delimiter       string `json:"delimiter"`
	RecordDelimiter string `json:"record_delimiter"`
	Quoting         bool   `json:"quoting"`
	QuoteChar       string `json:"quote_char"`
	HasHeader       bool   `json:"has_header"`
	Empty           bool   `json:"empty"`
}

func newDetectCommand(a *app) *cobra.Command {
	var (
		flags  dialectFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "Detect the dialect of a delimited file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hints, err := flags.hints(cmd)
			if err != nil {
				return err
			}

			in, err := gristle.OpenInput(inputPath(args), a.streams.In)
			if err != nil {
				return err
			}
			defer in.Close()

			report := detectReport{
				Path:        in.Path,
				Format:      in.Type.String(),
				Compression: in.Compression.String(),
			}

			if in.Type == gristle.FileTypeDelimited {
				dialect, _, err := a.detector().DetectReader(in.Reader(), hints)
				switch {
				case err == nil:
					fillReport(&report, dialect)
				case errors.Is(err, gristle.ErrEmptySample):
					report.Empty = true
					logger.Warnf("%s is empty, nothing to detect", in.Path)
				default:
					return err
				}
			} else {
				// spreadsheet and columnar inputs carry their own structure
				fillReport(&report, gristle.NewDialect(",").WithHeader(true))
			}

			if asJSON {
				enc := json.NewEncoder(a.streams.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return writeReport(a.streams.Out, report)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the dialect as JSON")
	return cmd
}

func fillReport(report *detectReport, d gristle.Dialect) {
	report.Delimiter = d.Delimiter
	report.RecordDelimiter = d.RecordDelimiter
	report.Quoting = d.Quoting && !d.IsMultiChar()
	if report.Quoting {
		report.QuoteChar = string(d.QuoteChar)
	}
	report.HasHeader = d.HasHeader
}

func writeReport(w io.Writer, r detectReport) error {
	if r.Empty {
		_, err := fmt.Fprintf(w, "file:             %s\nempty:            true\n", r.Path)
		return err
	}
	recordDelimiter := "newline"
	if r.RecordDelimiter != "" {
		recordDelimiter = fmt.Sprintf("%q", r.RecordDelimiter)
	}
	_, err := fmt.Fprintf(w,
		"file:             %s\nformat:           %s\ncompression:      %s\ndelimiter:        %q\nrecord delimiter: %s\nquoting:          %t\nquote char:       %q\nhas header:       %t\n",
		r.Path, r.Format, r.Compression, r.Delimiter, recordDelimiter, r.Quoting, r.QuoteChar, r.HasHeader)
	return err
}
