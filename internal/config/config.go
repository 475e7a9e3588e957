// Package config handles furnitool configuration loading and management.
package config

import (
	"go.uber.org/zap"

	"github.com/Faultbox/furniture-core/pkg/codec"
)

// Config holds all furnitool settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Import  ImportConfig  `yaml:"import"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds package writing preferences.
type ExportConfig struct {
	StripNames       bool       `yaml:"strip_names"`       // Omit element names
	ExportPivots     bool       `yaml:"export_pivots"`     // Keep pivots of unrotated elements
	ExportGroups     bool       `yaml:"export_groups"`     // Write the groups hierarchy
	Credit           string     `yaml:"credit"`            // Default model credit
	WarnOverflow     bool       `yaml:"warn_overflow"`     // Report geometry outside the limits
	CoordinateLimits [2]float64 `yaml:"coordinate_limits"` // Min and max coordinate
	CompressionLevel int        `yaml:"compression_level"` // Flate level of written archives
}

// ImportConfig holds package reading preferences.
type ImportConfig struct {
	ValidateSchema bool   `yaml:"validate_schema"` // Report schema mismatches as notices
	LegacyCharset  string `yaml:"legacy_charset"`  // Charset of zip names without the UTF-8 flag
	ParentDir      string `yaml:"parent_dir"`      // Where parent packages are looked up
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
			ExportPivots:     true,
			ExportGroups:     true,
			WarnOverflow:     true,
			CoordinateLimits: [2]float64{codec.DefaultEnvelope.Min, codec.DefaultEnvelope.Max},
			CompressionLevel: 6,
		},
		Import: ImportConfig{
			ValidateSchema: true,
			LegacyCharset:  "cp437",
			ParentDir:      ".",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// CodecSettings returns the codec settings this config describes.
func (c *Config) CodecSettings(log *zap.Logger) codec.Settings {
	s := codec.DefaultSettings()
	s.StripNames = c.Export.StripNames
	s.ExportPivots = c.Export.ExportPivots
	s.ExportGroups = c.Export.ExportGroups
	s.Credit = c.Export.Credit
	s.WarnOverflow = c.Export.WarnOverflow
	if lim := c.Export.CoordinateLimits; lim[0] < lim[1] {
		s.Envelope = codec.Envelope{Min: lim[0], Max: lim[1]}
	}
	if log != nil {
		s.Logger = log
	}
	return s
}
