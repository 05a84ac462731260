// Package logging builds the zap loggers used by the binaries.
//
// Production output is JSON with ISO8601 timestamps under "timestamp";
// the console format is the human readable development encoder. When a
// file is configured, output goes through lumberjack for size based
// rotation instead of stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/warp/rest-planner/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a logger from the logging section. levelOverride, when not
// empty, replaces the configured level (the --log-level flag).
func New(cfg config.LoggingConfig, levelOverride string) (*zap.Logger, error) {
	var sink zapcore.WriteSyncer
	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
	} else {
		sink = zapcore.Lock(os.Stderr)
	}
	return NewWithSink(cfg, levelOverride, sink)
}

// NewWithSink builds a logger writing to sink.
func NewWithSink(cfg config.LoggingConfig, levelOverride string, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	level := cfg.Level
	if levelOverride != "" {
		level = levelOverride
	}
	if level == "" {
		level = "info"
	}
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "", "json":
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case "console":
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	core := zapcore.NewCore(encoder, sink, zapLevel)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
