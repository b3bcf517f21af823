package config

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging options.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console json"`

	// File, when set, receives JSON logs rotated by size
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb" validate:"min=1"`
	MaxBackups int    `koanf:"max_backups" validate:"min=0"`
	MaxAgeDays int    `koanf:"max_age_days" validate:"min=0"`
	Compress   bool   `koanf:"compress"`
}

// Build creates a logger writing to w and, when File is set, to a rotated
// log file. The returned close function flushes and closes the file.
func (c LogConfig) Build(w io.Writer) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	var enc zapcore.Encoder
	switch c.Format {
	case "json":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(w), level)}

	var rotator *lumberjack.Logger
	if c.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSizeMB,  // megabytes
			MaxBackups: c.MaxBackups, // files
			MaxAge:     c.MaxAgeDays, // days
			Compress:   c.Compress,
		}
		fileEnc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEnc, zapcore.AddSync(rotator), level))
	}

	log := zap.New(zapcore.NewTee(cores...))
	closeFn := func() error {
		_ = log.Sync()
		if rotator != nil {
			return rotator.Close()
		}
		return nil
	}
	return log, closeFn, nil
}
