package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Sandbox SandboxConfig `mapstructure:"sandbox"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// SandboxConfig holds the fixed sandbox policy. Every field is read once at
// startup and applied identically to each run; nothing here is tunable per
// request.
type SandboxConfig struct {
	Backend         string  `mapstructure:"backend"`
	Image           string  `mapstructure:"image"`
	InnerTimeoutSec int     `mapstructure:"inner_timeout_sec"`
	OuterMarginSec  int     `mapstructure:"outer_margin_sec"`
	MemoryMB        int     `mapstructure:"memory_mb"`
	PidsLimit       int     `mapstructure:"pids_limit"`
	CPUs            float64 `mapstructure:"cpus"`
	MaxSourceChars  int     `mapstructure:"max_source_chars"`
	MaxOutputBytes  int     `mapstructure:"max_output_bytes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// New loads and validates the application configuration
func New() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	viper.SetDefault("server.transport", "http")
	viper.SetDefault("server.http_port", 5000)

	viper.SetDefault("sandbox.backend", "docker")
	viper.SetDefault("sandbox.image", "python:3.11-slim")
	viper.SetDefault("sandbox.inner_timeout_sec", 10)
	viper.SetDefault("sandbox.outer_margin_sec", 2)
	viper.SetDefault("sandbox.memory_mb", 128)
	viper.SetDefault("sandbox.pids_limit", 64)
	viper.SetDefault("sandbox.cpus", 0.5)
	viper.SetDefault("sandbox.max_source_chars", 5000)
	viper.SetDefault("sandbox.max_output_bytes", 10000)

	viper.SetDefault("logging.mode", "production")
	viper.SetDefault("logging.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	if c.Server.Transport != "http" && c.Server.Transport != "mcp" {
		return fmt.Errorf("invalid server.transport: %s, must be 'http' or 'mcp'", c.Server.Transport)
	}

	if c.Sandbox.Backend != "docker" && c.Sandbox.Backend != "podman" {
		return fmt.Errorf("unsupported sandbox.backend: %s, must be 'docker' or 'podman'", c.Sandbox.Backend)
	}

	if c.Sandbox.Image == "" {
		return fmt.Errorf("sandbox.image must not be empty")
	}

	if c.Sandbox.InnerTimeoutSec <= 0 {
		return fmt.Errorf("sandbox.inner_timeout_sec must be positive, got: %d", c.Sandbox.InnerTimeoutSec)
	}

	// The supervisory timeout must stay strictly above the in-sandbox one,
	// otherwise the safety net fires before the wrapper can terminate the
	// run cleanly.
	if c.Sandbox.OuterMarginSec < 1 {
		return fmt.Errorf("sandbox.outer_margin_sec must be at least 1, got: %d", c.Sandbox.OuterMarginSec)
	}

	if c.Sandbox.MemoryMB <= 0 {
		return fmt.Errorf("sandbox.memory_mb must be positive, got: %d", c.Sandbox.MemoryMB)
	}

	if c.Sandbox.PidsLimit <= 0 {
		return fmt.Errorf("sandbox.pids_limit must be positive, got: %d", c.Sandbox.PidsLimit)
	}

	if c.Sandbox.CPUs <= 0 {
		return fmt.Errorf("sandbox.cpus must be positive, got: %g", c.Sandbox.CPUs)
	}

	if c.Sandbox.MaxSourceChars <= 0 {
		return fmt.Errorf("sandbox.max_source_chars must be positive, got: %d", c.Sandbox.MaxSourceChars)
	}

	if c.Sandbox.MaxOutputBytes <= 0 {
		return fmt.Errorf("sandbox.max_output_bytes must be positive, got: %d", c.Sandbox.MaxOutputBytes)
	}

	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	return nil
}

// InnerTimeout returns the in-sandbox wall-clock limit as a duration.
func (c *Config) InnerTimeout() time.Duration {
	return time.Duration(c.Sandbox.InnerTimeoutSec) * time.Second
}

// OuterTimeout returns the supervisory limit applied around the whole
// container invocation. Always strictly greater than InnerTimeout.
func (c *Config) OuterTimeout() time.Duration {
	return time.Duration(c.Sandbox.InnerTimeoutSec+c.Sandbox.OuterMarginSec) * time.Second
}
