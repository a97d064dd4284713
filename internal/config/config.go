// Package config provides configuration loading and validation for the
// recordings analyzer.
package config

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

// Sentinel validation errors.
var (
	ErrInvalidLogLevel  = errors.New("invalid logging level")
	ErrInvalidLogFormat = errors.New("invalid logging format")
	ErrInvalidTopCount  = errors.New("report top count must be positive")
	ErrInvalidLineSize  = errors.New("invalid max line size")
)

// Default configuration values.
const (
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultReportTop   = 10
	DefaultMaxLineSize = "10MiB"
)

// Config holds all configuration for the recordings analyzer.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Analyze AnalyzeConfig `mapstructure:"analyze"`
	Report  ReportConfig  `mapstructure:"report"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AnalyzeConfig holds ingestion-specific configuration.
type AnalyzeConfig struct {
	// CollectRaw enables the decompressed-events side artifact.
	CollectRaw bool `mapstructure:"collect_raw"`

	// CompressRaw writes the side artifact through LZ4.
	CompressRaw bool `mapstructure:"compress_raw"`

	// MaxLineSize bounds one line in multi-file mode, e.g. "10MiB".
	MaxLineSize string `mapstructure:"max_line_size"`
}

// ReportConfig holds rendering-specific configuration.
type ReportConfig struct {
	// Top is how many entries the merged size views show.
	Top int `mapstructure:"top"`

	// Color enables ANSI color in the terminal report.
	Color bool `mapstructure:"color"`
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Report.Top <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTopCount, c.Report.Top)
	}

	_, err := c.MaxLineBytes()
	if err != nil {
		return err
	}

	return nil
}

// MaxLineBytes parses the configured line bound into bytes.
func (c *Config) MaxLineBytes() (int, error) {
	size, err := humanize.ParseBytes(c.Analyze.MaxLineSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLineSize, c.Analyze.MaxLineSize)
	}

	if size == 0 {
		return 0, fmt.Errorf("%w: must be positive", ErrInvalidLineSize)
	}

	return int(size), nil
}
