package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Transport: "http",
			HTTPPort:  5000,
		},
		Sandbox: SandboxConfig{
			Backend:         "docker",
			Image:           "python:3.11-slim",
			InnerTimeoutSec: 10,
			OuterMarginSec:  2,
			MemoryMB:        128,
			PidsLimit:       64,
			CPUs:            0.5,
			MaxSourceChars:  5000,
			MaxOutputBytes:  10000,
		},
		Logging: LoggingConfig{
			Mode:  "production",
			Level: "info",
		},
	}
}

func TestConfigValidation(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := validConfig()
		err := cfg.validate()
		require.NoError(t, err)
	})

	t.Run("ValidMCPTransport", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Transport = "mcp"
		err := cfg.validate()
		require.NoError(t, err)
	})

	t.Run("InvalidServerTransport", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Transport = "invalid"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid server.transport")
	})

	t.Run("InvalidBackend", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sandbox.Backend = "local"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported sandbox.backend")
	})

	t.Run("EmptyImage", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sandbox.Image = ""
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sandbox.image")
	})

	t.Run("InvalidInnerTimeout", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sandbox.InnerTimeoutSec = 0
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sandbox.inner_timeout_sec must be positive")
	})

	t.Run("InvalidOuterMargin", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sandbox.OuterMarginSec = 0
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sandbox.outer_margin_sec must be at least 1")
	})

	t.Run("InvalidMemory", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sandbox.MemoryMB = -1
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sandbox.memory_mb must be positive")
	})

	t.Run("InvalidPidsLimit", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sandbox.PidsLimit = 0
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sandbox.pids_limit must be positive")
	})

	t.Run("InvalidCPUs", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sandbox.CPUs = 0
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sandbox.cpus must be positive")
	})

	t.Run("InvalidMaxSourceChars", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sandbox.MaxSourceChars = 0
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sandbox.max_source_chars must be positive")
	})

	t.Run("InvalidMaxOutputBytes", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sandbox.MaxOutputBytes = 0
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sandbox.max_output_bytes must be positive")
	})

	t.Run("InvalidLoggingMode", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging.Mode = "invalid_mode"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid logging.mode")
	})

	t.Run("InvalidLogLevel", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging.Level = "invalid_level"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid logging.level")
	})
}

func TestConfigTimeouts(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, 10*time.Second, cfg.InnerTimeout())
	assert.Equal(t, 12*time.Second, cfg.OuterTimeout())

	// The supervisory timeout is strictly greater than the in-sandbox one
	// for any configuration that passes validation.
	assert.Greater(t, cfg.OuterTimeout(), cfg.InnerTimeout())
}
