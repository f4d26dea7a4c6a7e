// Package cli wires the gristle library into cobra commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/willzfarmer/gristle"
	"github.com/willzfarmer/gristle/internal/config"
	"github.com/willzfarmer/gristle/internal/logger"
)

// IOStreams are the standard streams a command reads and writes.
type IOStreams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// app carries the global flags and resolved configuration shared by all subcommands.
type app struct {
	streams    IOStreams
	configPath string
	logLevel   string
	quiet      bool
	verbose    bool
	cfg        *config.Config
}

// NewRootCommand builds the gristle command tree.
func NewRootCommand(streams IOStreams) *cobra.Command {
	a := &app{streams: streams}

	root := &cobra.Command{
		Use:   "gristle",
		Short: "Inspect and transform delimited text files",
		Long: `gristle detects the dialect of delimited files, converts them between
dialects and summarises their columns.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setup()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a gristle.yaml config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error or quiet")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress diagnostics")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Show detailed diagnostics")

	commands := []*cobra.Command{
		newDetectCommand(a),
		newConvertCommand(a),
		newFreqCommand(a),
		newScalarCommand(a),
	}
	root.AddCommand(commands...)
	return root
}

// setup loads configuration and initialises the logger. Flags win over config.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	return logger.Init(a.streams.Err, logger.VerbosityLevel(a.quiet, a.verbose, level))
}

// detector builds a detector from the configuration.
func (a *app) detector() *gristle.Detector {
	opts := append(a.cfg.DetectorOptions(), gristle.WithDetectorLogger(logger.Logger()))
	return gristle.NewDetector(opts...)
}

// Execute runs the command line and returns the process exit status.
func Execute(ctx context.Context, args []string, streams IOStreams) int {
	root := NewRootCommand(streams)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(streams.Err, "Error: %v\n", err)
		return 1
	}
	return 0
}

// DefaultStreams returns the process streams.
func DefaultStreams() IOStreams {
	return IOStreams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}
