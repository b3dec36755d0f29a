package config

import (
	"fmt"
	"log/slog"
	"os"
)

// Loader handles configuration loading with layered precedence.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. Config file (when path is non-empty)
// 3. CLI flag overrides (merged by the caller)
//
// Validation happens after the caller merges its flag overrides, not here.
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		l.logger.Debug("no config file given, using defaults")
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	fileConfig, err := UnmarshalInto(data)
	if err != nil {
		return nil, err
	}
	config.Merge(fileConfig)
	l.logger.Debug("loaded config file", slog.String("path", path))
	return config, nil
}
