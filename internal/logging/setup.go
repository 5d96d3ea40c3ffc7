package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Standard field names shared by every layer.
const (
	FieldLayer     = "layer"
	FieldAdapter   = "adapter"
	FieldUseCase   = "usecase"
	FieldComponent = "component"
	FieldEntityID  = "entity_id"
	FieldPath      = "path"
	FieldCount     = "count"
	FieldDriver    = "driver"
)

// Config controls logger construction.
type Config struct {
	Level  string
	Format string // "console" or "json"
	File   FileConfig
}

// FileConfig enables a rotated log file next to the console output.
type FileConfig struct {
	Enabled    bool
	Path       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// New builds the application logger. Console output goes to w (stderr in
// production). The returned cleanup closes the log file, if any.
func New(cfg Config, w io.Writer) (zerolog.Logger, func(), error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var console io.Writer = w
	if cfg.Format != "json" {
		console = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	if !cfg.File.Enabled {
		logger := zerolog.New(console).Level(level).With().Timestamp().Logger()
		return logger, func() {}, nil
	}

	if cfg.File.Path == "" {
		return zerolog.Nop(), nil, fmt.Errorf("log file enabled but no path configured")
	}

	// Create logs directory with secure permissions (0700 - owner only)
	if err := os.MkdirAll(filepath.Dir(cfg.File.Path), 0700); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File.Path,
		MaxSize:    cfg.File.MaxSize,
		MaxBackups: cfg.File.MaxBackups,
		MaxAge:     cfg.File.MaxAge,
		Compress:   cfg.File.Compress,
	}

	logger := zerolog.New(io.MultiWriter(console, fileWriter)).
		Level(level).
		With().
		Timestamp().
		Logger()

	cleanup := func() {
		_ = fileWriter.Close()
	}

	return logger, cleanup, nil
}

// ForAdapter returns log enriched with the adapter layer fields.
func ForAdapter(log zerolog.Logger, adapter string) zerolog.Logger {
	return log.With().
		Str(FieldLayer, "adapter").
		Str(FieldAdapter, adapter).
		Logger()
}

// ForUseCase returns log enriched with the use case layer fields.
func ForUseCase(log zerolog.Logger, usecase string) zerolog.Logger {
	return log.With().
		Str(FieldLayer, "usecase").
		Str(FieldUseCase, usecase).
		Logger()
}
