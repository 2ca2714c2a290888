package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Config represents the complete configuration for the imbgen application.
// It includes settings for all commands (encode, batch, serve) and supports
// loading from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Encoder configuration
	Encode EncodeConfig `mapstructure:"encode" yaml:"encode" json:"encode"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// EncodeConfig contains the barcode encoder settings shared by all commands.
type EncodeConfig struct {
	// BarcodeID and ServiceType act as per-run defaults for records that
	// do not carry their own values.
	BarcodeID   string `mapstructure:"barcode_id" yaml:"barcode_id" json:"barcode_id"`
	ServiceType string `mapstructure:"service_type" yaml:"service_type" json:"service_type"`
	MailerID    string `mapstructure:"mailer_id" yaml:"mailer_id" json:"mailer_id"`

	// Strict enforces the USPS digit conventions on the barcode identifier.
	Strict bool `mapstructure:"strict" yaml:"strict" json:"strict"`

	// ServiceTypes extends or replaces the built-in STID registry.
	ServiceTypes map[string]string `mapstructure:"service_types" yaml:"service_types" json:"service_types"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	RateLimitPerMin int    `mapstructure:"rate_limit_per_min" yaml:"rate_limit_per_min" json:"rate_limit_per_min"`
	MaxBatchSize    int    `mapstructure:"max_batch_size" yaml:"max_batch_size" json:"max_batch_size"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
	Charset         string `mapstructure:"charset" yaml:"charset" json:"charset"`

	// Columns maps the logical record fields to CSV header names.
	Columns ColumnConfig `mapstructure:"columns" yaml:"columns" json:"columns"`
}

// ColumnConfig maps logical input fields to CSV column headers.
type ColumnConfig struct {
	BarcodeID   string `mapstructure:"barcode_id" yaml:"barcode_id" json:"barcode_id"`
	ServiceType string `mapstructure:"service_type" yaml:"service_type" json:"service_type"`
	MailerID    string `mapstructure:"mailer_id" yaml:"mailer_id" json:"mailer_id"`
	Sequence    string `mapstructure:"sequence" yaml:"sequence" json:"sequence"`
	RoutingCode string `mapstructure:"routing_code" yaml:"routing_code" json:"routing_code"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Encode: EncodeConfig{
			BarcodeID:   "00",
			ServiceType: "040",
			Strict:      false,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			TimeoutSec:      30,
			ShutdownTimeout: 10,
			RateLimitPerMin: 0,
			MaxBatchSize:    10000,
		},
		Batch: BatchConfig{
			Workers:         runtime.NumCPU(),
			ContinueOnError: true,
			Charset:         "utf-8",
			Columns: ColumnConfig{
				BarcodeID:   "barcode_id",
				ServiceType: "service_type",
				MailerID:    "mailer_id",
				Sequence:    "sequence",
				RoutingCode: "routing_code",
			},
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json", "csv"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	validCharsets := []string{"utf-8", "latin-1", "windows-1252"}
	if c.Batch.Charset != "" && !contains(validCharsets, strings.ToLower(c.Batch.Charset)) {
		return fmt.Errorf("invalid batch charset: %s (must be one of: %s)", c.Batch.Charset, strings.Join(validCharsets, ", "))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.RateLimitPerMin < 0 {
		return fmt.Errorf("invalid rate limit: %d (must be zero or positive)", c.Server.RateLimitPerMin)
	}
	if c.Server.MaxBatchSize <= 0 {
		return fmt.Errorf("invalid max batch size: %d (must be positive)", c.Server.MaxBatchSize)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}

	for stid := range c.Encode.ServiceTypes {
		if len(stid) != 3 || !isDigits(stid) {
			return fmt.Errorf("invalid service type identifier in registry: %q (must be 3 digits)", stid)
		}
	}

	return nil
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
