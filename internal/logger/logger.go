// Package logger holds the process-wide zerolog logger used by the gristle commands.
// Library code receives a zerolog.Logger explicitly and never reads this one.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stderr, zerolog.InfoLevel)
)

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: "15:04:05",
	}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// Init replaces the logger. Diagnostics go to w, never to the data output.
func Init(w io.Writer, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w, lvl)
	return nil
}

// ParseLevel accepts zerolog level names plus "quiet", which disables logging.
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "":
		return zerolog.InfoLevel, nil
	case "quiet", "off", "none":
		return zerolog.Disabled, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// VerbosityLevel resolves the -q/-v flags against the configured level.
func VerbosityLevel(quiet, verbose bool, configured string) string {
	switch {
	case quiet:
		return "quiet"
	case verbose:
		return "debug"
	default:
		return configured
	}
}

// Logger returns the current logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debugf(format string, v ...any) {
	l := Logger()
	l.Debug().Msgf(format, v...)
}

func Infof(format string, v ...any) {
	l := Logger()
	l.Info().Msgf(format, v...)
}

func Warnf(format string, v ...any) {
	l := Logger()
	l.Warn().Msgf(format, v...)
}
