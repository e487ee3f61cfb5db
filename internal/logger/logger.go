package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the service logger.
// level: "debug", "info", "warn", "error"; anything else logs a warning and runs at info.
// format: "json" or "console" (default "json")
func NewLogger(level, format, serviceName string) (*zap.Logger, error) {
	zapLevel, known := parseLevel(level)

	baseLogger, err := buildConfig(zapLevel, format).Build()
	if err != nil {
		return nil, err
	}

	if serviceName != "" {
		baseLogger = baseLogger.With(zap.String("service_name", serviceName))
	}
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		baseLogger = baseLogger.With(zap.String("hostname", hostname))
	}

	if !known {
		baseLogger.Warn("Unknown LOG_LEVEL, using info", zap.String("log_level", level))
	}
	return baseLogger, nil
}

// parseLevel accepts the LOG_LEVEL spellings operators use. An empty value
// is the info default; an unrecognised one is info and reports false.
func parseLevel(level string) (zapcore.Level, bool) {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "":
		return zapcore.InfoLevel, true
	case "warning":
		return zapcore.WarnLevel, true
	}

	parsed, err := zapcore.ParseLevel(level)
	if err != nil || parsed > zapcore.ErrorLevel {
		return zapcore.InfoLevel, false
	}
	return parsed, true
}

func buildConfig(level zapcore.Level, format string) zap.Config {
	var config zap.Config
	if format == "console" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}
	}
	config.Level = zap.NewAtomicLevelAt(level)

	// Every per-tick line is kept at debug
	if level == zapcore.DebugLevel {
		config.Sampling = nil
	}
	// Stack traces only at debug
	config.DisableStacktrace = level > zapcore.DebugLevel
	return config
}
