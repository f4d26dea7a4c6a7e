package cli

import (
	"strconv"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/willzfarmer/gristle"
)

// dialectFlags are the input dialect flags shared by the commands.
// Flags left unset are detected.
type dialectFlags struct {
	delimiter       string
	recordDelimiter string
	quoteChar       string
	quoting         bool
	hasHeader       bool
}

func (f *dialectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.delimiter, "delimiter", "d", "", `Input field delimiter, may be multi-character (e.g. "::"); escapes such as \t are understood`)
	cmd.Flags().StringVarP(&f.recordDelimiter, "recdelimiter", "r", "", "Input end-of-record delimiter")
	cmd.Flags().StringVar(&f.quoteChar, "quotechar", "", `Input quote character (default '"')`)
	cmd.Flags().BoolVar(&f.quoting, "quoting", false, "Input fields are quoted")
	cmd.Flags().BoolVar(&f.hasHeader, "hasheader", false, "Input has a header record")
}

// hints turns the flags that were set on cmd into detection hints.
func (f *dialectFlags) hints(cmd *cobra.Command) (gristle.Hints, error) {
	var hints gristle.Hints
	if f.delimiter != "" {
		hints.Delimiter = unescape(f.delimiter)
	}
	if f.recordDelimiter != "" {
		hints.RecordDelimiter = unescape(f.recordDelimiter)
	}
	if f.quoteChar != "" {
		r, _ := utf8.DecodeRuneInString(unescape(f.quoteChar))
		hints.QuoteChar = r
	}
	if cmd.Flags().Changed("quoting") {
		hints.Quoting = gristle.Bool(f.quoting)
	}
	if cmd.Flags().Changed("hasheader") {
		hints.HasHeader = gristle.Bool(f.hasHeader)
	}
	if hints.Delimiter != "" {
		if err := hints.Dialect().Validate(); err != nil {
			return hints, err
		}
	}
	return hints, nil
}

// unescape interprets Go escape sequences so that `\t` on the command line means a tab.
func unescape(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return u
	}
	return s
}

// inputPath returns the single input path argument, or "-" for stdin.
func inputPath(args []string) string {
	if len(args) == 0 {
		return gristle.StdioPath
	}
	return args[0]
}
