// Package logging builds the process logger. Records are single lines of
// the form "timestamp | LEVEL | logger-name | message".
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"tripload/src/config"
)

const (
	separator  = " | "
	timeLayout = "2006-01-02 15:04:05,000"
)

// New returns a logger writing to console, and additionally to a rotated
// file when cfg.File is set. The returned function flushes and closes the
// outputs.
func New(cfg config.LoggingConfig, console zapcore.WriteSyncer) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing log level: %w", err)
	}

	if console == nil {
		console = os.Stderr
	}

	encoder := zapcore.NewConsoleEncoder(EncoderConfig())
	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(console), level)}

	var file *lumberjack.Logger

	if cfg.File != "" {
		file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			LocalTime:  true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(file), level))
	}

	logger := zap.New(zapcore.NewTee(cores...)).Named(cfg.Name)

	closeFn := func() {
		_ = logger.Sync()

		if file != nil {
			_ = file.Close()
		}
	}

	return logger, closeFn, nil
}

// EncoderConfig returns the console layout shared by every output.
func EncoderConfig() zapcore.EncoderConfig {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.ConsoleSeparator = separator
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeName = zapcore.FullNameEncoder
	encoderConfig.CallerKey = zapcore.OmitKey
	encoderConfig.StacktraceKey = zapcore.OmitKey

	return encoderConfig
}
