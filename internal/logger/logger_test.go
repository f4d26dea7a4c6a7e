package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{input: "", want: zerolog.InfoLevel},
		{input: "debug", want: zerolog.DebugLevel},
		{input: " WARN ", want: zerolog.WarnLevel},
		{input: "trace", want: zerolog.TraceLevel},
		{input: "quiet", want: zerolog.Disabled},
		{input: "off", want: zerolog.Disabled},
		{input: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerbosityLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "quiet", VerbosityLevel(true, true, "debug"))
	assert.Equal(t, "debug", VerbosityLevel(false, true, "error"))
	assert.Equal(t, "error", VerbosityLevel(false, false, "error"))
}

// TestInit replaces the package logger, so it does not run in parallel.
func TestInit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(&buf, "warn"))
	t.Cleanup(func() { _ = Init(&bytes.Buffer{}, "info") })

	Infof("hidden %d", 1)
	Warnf("shown %d", 2)
	Debugf("hidden %d", 3)

	out := buf.String()
	assert.Contains(t, out, "shown 2")
	assert.NotContains(t, out, "hidden")

	buf.Reset()
	require.NoError(t, Init(&buf, "quiet"))
	Warnf("silenced")
	assert.Empty(t, buf.String())

	assert.Error(t, Init(&buf, "bogus"))
}
