package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, parseLevel(tc.in), tc.in)
	}
}

func TestNew_WritesToOutputAndDailyFile(t *testing.T) {
	var buf bytes.Buffer
	root := t.TempDir()
	day := time.Date(2024, 9, 3, 10, 0, 0, 0, time.UTC)

	l, err := New(Options{Level: "info", Output: &buf, FileRoot: root, Now: func() time.Time { return day }})
	require.NoError(t, err)

	l.Info().Str("k", "v").Msg("hello")
	l.Debug().Msg("hidden")
	require.NoError(t, l.Close())

	assert.Contains(t, buf.String(), `"message":"hello"`)
	assert.NotContains(t, buf.String(), "hidden")

	data, err := os.ReadFile(filepath.Join(root, "20240903", "api_20240903.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestNew_WithoutFileRoot(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Output: &buf})
	require.NoError(t, err)
	assert.NoError(t, l.Close())

	l.Warn().Msg("careful")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
