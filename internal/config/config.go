package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the resolved runstatus configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Report  ReportConfig  `mapstructure:"report"`
	Watch   WatchConfig   `mapstructure:"watch"`
	S3      S3Config      `mapstructure:"s3"`
}

// LoggingConfig controls diagnostic logging on stderr.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// ReportConfig controls report presentation.
type ReportConfig struct {
	// Color is one of auto, always, never.
	Color string `mapstructure:"color"`

	// MaxWidth truncates event lines. Zero means detect from the terminal.
	MaxWidth int `mapstructure:"max_width"`

	Verbose bool `mapstructure:"verbose"`

	// Output is one of text, json, jsonl.
	Output string `mapstructure:"output"`
}

// WatchConfig controls the watch loop.
type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// S3Config configures access to run outputs stored in S3.
type S3Config struct {
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint"`
	Profile        string `mapstructure:"profile"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`

	// Static credentials. Leave empty to use the AWS default chain.
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
}

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Output formats.
const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputJSONL = "jsonl"
)

// MinWatchInterval is the shortest accepted watch interval.
const MinWatchInterval = time.Second

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks enumerated values and ranges.
func (c *Config) Validate() error {
	if !oneOf(c.Logging.Level, validLogLevels...) {
		return fmt.Errorf("logging.level must be one of %s, got %q", strings.Join(validLogLevels, ", "), c.Logging.Level)
	}
	if !oneOf(c.Report.Color, ColorAuto, ColorAlways, ColorNever) {
		return fmt.Errorf("report.color must be one of auto, always, never, got %q", c.Report.Color)
	}
	if !oneOf(c.Report.Output, OutputText, OutputJSON, OutputJSONL) {
		return fmt.Errorf("report.output must be one of text, json, jsonl, got %q", c.Report.Output)
	}
	if c.Report.MaxWidth < 0 {
		return fmt.Errorf("report.max_width must be >= 0, got %d", c.Report.MaxWidth)
	}
	if c.Watch.Interval < MinWatchInterval {
		return fmt.Errorf("watch.interval must be at least %s, got %s", MinWatchInterval, c.Watch.Interval)
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
