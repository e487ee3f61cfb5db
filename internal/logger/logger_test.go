package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Levels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"unknown": zapcore.InfoLevel,
	}

	for level, want := range cases {
		for _, format := range []string{"json", "console"} {
			log, err := NewLogger(level, format, "walrus-backend")
			require.NoError(t, err)
			require.True(t, log.Core().Enabled(want), "level %s format %s", level, format)
			if want > zapcore.DebugLevel {
				require.False(t, log.Core().Enabled(want-1), "level %s format %s", level, format)
			}
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in    string
		want  zapcore.Level
		known bool
	}{
		{"debug", zapcore.DebugLevel, true},
		{" DEBUG ", zapcore.DebugLevel, true},
		{"Warning", zapcore.WarnLevel, true},
		{"error", zapcore.ErrorLevel, true},
		{"", zapcore.InfoLevel, true},
		{"verbose", zapcore.InfoLevel, false},
		{"fatal", zapcore.InfoLevel, false},
	}

	for _, tc := range cases {
		got, known := parseLevel(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.known, known, tc.in)
	}
}

func TestBuildConfig_DebugKeepsEveryLine(t *testing.T) {
	debug := buildConfig(zapcore.DebugLevel, "json")
	assert.Nil(t, debug.Sampling)
	assert.False(t, debug.DisableStacktrace)

	info := buildConfig(zapcore.InfoLevel, "json")
	assert.NotNil(t, info.Sampling)
	assert.True(t, info.DisableStacktrace)
	assert.Equal(t, "timestamp", info.EncoderConfig.TimeKey)
}
