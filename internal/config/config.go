// Package config handles exporter configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/webgl-export/pkg/webgl"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Data    DataConfig    `yaml:"data"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig holds game data file paths.
type DataConfig struct {
	GRFPaths []string `yaml:"grf_paths"` // Searched last to first
}

// ExportConfig holds geometry document settings.
type ExportConfig struct {
	Precision     int    `yaml:"precision"`      // Decimal digits per component
	Rounding      string `yaml:"rounding"`       // half-even or half-away
	TexturePrefix string `yaml:"texture_prefix"` // Prepended to the texture name
	Indent        int    `yaml:"indent"`         // Spaces per JSON level, 0 for compact
	OutputPath    string `yaml:"output"`         // Default output file
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Precision:     webgl.DefaultPrecision,
			Rounding:      webgl.RoundHalfEven.String(),
			TexturePrefix: webgl.DefaultTexturePrefix,
			Indent:        4,
			OutputPath:    "scene.json",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks value ranges. It does not touch the filesystem.
func (c *Config) Validate() error {
	if c.Export.Precision < 0 || c.Export.Precision > webgl.MaxPrecision {
		return fmt.Errorf("%w: precision %d outside 0..%d", ErrInvalidConfig, c.Export.Precision, webgl.MaxPrecision)
	}
	if _, err := webgl.ParseRoundingMode(c.Export.Rounding); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Export.Indent < 0 {
		return fmt.Errorf("%w: negative indent %d", ErrInvalidConfig, c.Export.Indent)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}

// Options converts the export section into pipeline options.
// Call Validate first; an unknown rounding mode falls back to half-even.
func (c *Config) Options() webgl.Options {
	mode, err := webgl.ParseRoundingMode(c.Export.Rounding)
	if err != nil {
		mode = webgl.RoundHalfEven
	}
	return webgl.Options{
		Precision:     c.Export.Precision,
		Rounding:      mode,
		TexturePrefix: c.Export.TexturePrefix,
	}
}
