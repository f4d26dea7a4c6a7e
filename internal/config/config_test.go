package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willzfarmer/gristle"
	"github.com/willzfarmer/gristle/internal/logger"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gristle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, gristle.DefaultSampleLines, cfg.Sample.Lines)
	assert.Equal(t, gristle.DefaultSampleBytes, cfg.Sample.Bytes)
	assert.InDelta(t, gristle.DefaultConsistency, cfg.Detect.Consistency, 1e-9)
	assert.Equal(t, gristle.DefaultCandidates, cfg.Detect.Candidates)
	assert.Equal(t, gristle.DefaultMaxDistinct, cfg.Freq.MaxDistinct)
	assert.Equal(t, gristle.DefaultQueueSize, cfg.Convert.QueueSize)
	assert.False(t, cfg.Convert.Pipelined)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
sample:
  lines: 10
detect:
  consistency: 0.75
  candidates: [";", "::"]
freq:
  max_distinct: 20
convert:
  pipelined: true
  queue_size: 8
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Sample.Lines)
	assert.Equal(t, gristle.DefaultSampleBytes, cfg.Sample.Bytes, "unset keys keep their defaults")
	assert.InDelta(t, 0.75, cfg.Detect.Consistency, 1e-9)
	assert.Equal(t, []string{";", "::"}, cfg.Detect.Candidates)
	assert.Equal(t, 20, cfg.Freq.MaxDistinct)
	assert.True(t, cfg.Convert.Pipelined)
	assert.Equal(t, 8, cfg.Convert.QueueSize)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "Consistency above one", content: "detect:\n  consistency: 1.5\n"},
		{name: "Zero sample lines", content: "sample:\n  lines: 0\n"},
		{name: "Unknown log level", content: "log:\n  level: chatty\n"},
		{name: "Tiny sample", content: "sample:\n  bytes: 4\n"},
		{name: "Malformed YAML", content: "sample: [lines\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	t.Run("Explicit path must exist", func(t *testing.T) {
		t.Parallel()

		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestLoad_LogLevels(t *testing.T) {
	t.Parallel()

	for _, level := range []string{"trace", "debug", "info", "warn", "error", "quiet", "off", "none", "DEBUG"} {
		t.Run(level, func(t *testing.T) {
			t.Parallel()

			cfg, err := Load(writeConfig(t, "log:\n  level: "+level+"\n"))
			require.NoError(t, err)
			assert.Equal(t, level, cfg.Log.Level)
			_, err = logger.ParseLevel(cfg.Log.Level)
			assert.NoError(t, err)
		})
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("GRISTLE_SAMPLE_LINES", "7")
	t.Setenv("GRISTLE_FREQ_MAX_DISTINCT", "99")
	t.Setenv("GRISTLE_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "sample:\n  lines: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Sample.Lines, "environment wins over the file")
	assert.Equal(t, 99, cfg.Freq.MaxDistinct)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestDetectorOptions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Detect.Candidates = []string{"#"}

	d := gristle.NewDetector(cfg.DetectorOptions()...)
	dialect, err := d.DetectAll([]byte("a#b\nc#d\n"), gristle.Hints{})
	require.NoError(t, err)
	assert.Equal(t, "#", dialect.Delimiter)
	assert.Equal(t, gristle.DefaultSampleBytes, d.SampleBytes())
}
