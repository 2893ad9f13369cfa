// Package logger builds the application's *slog.Logger on top of a zap core.
// Code throughout the service logs through log/slog; zap provides encoding,
// leveling and output selection.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Config holds the logger configuration.
type Config struct {
	// Level is the minimum level ("debug", "info", "warn", "error"). Defaults to info.
	Level string
	// Format is "json" or "console". Defaults to json.
	Format string
	// OutputFile is a path, or "stdout"/"stderr". Defaults to stdout.
	OutputFile string
	// Service is attached to every record as the "service" field.
	Service string
}

// New creates a slog logger backed by zap. The returned sync function flushes
// buffered entries and should be deferred by main.
func New(config Config) (*slog.Logger, func() error, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(config.Level)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	writeSyncer, err := getWriteSyncer(config.OutputFile)
	if err != nil {
		return nil, nil, err
	}

	core := zapcore.NewCore(getEncoder(config.Format), writeSyncer, level)

	service := config.Service
	if service == "" {
		service = "parking"
	}
	zl := zap.New(core, zap.AddCaller()).With(zap.String("service", service))

	return slog.New(zapslog.NewHandler(zl.Core())), zl.Sync, nil
}

func getEncoder(format string) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	if strings.EqualFold(format, "console") {
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zapcore.NewJSONEncoder(encoderConfig)
}

func getWriteSyncer(outputFile string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(outputFile) {
	case "stdout", "":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	default:
		file, err := os.OpenFile(outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", outputFile, err)
		}
		return zapcore.AddSync(file), nil
	}
}
