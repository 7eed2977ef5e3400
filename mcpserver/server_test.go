package mcpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bharathreddy533/docker-project/config"
	"github.com/bharathreddy533/docker-project/sandbox"
)

// MockService implements sandbox.Service for testing
type MockService struct {
	result sandbox.Result
	err    error
}

func (m *MockService) Execute(_ context.Context, _ string) (sandbox.Result, error) {
	return m.result, m.err
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Transport: "mcp", HTTPPort: 5000},
		Sandbox: config.SandboxConfig{
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
		Logging: config.LoggingConfig{Mode: "production", Level: "info"},
	}
}

func TestNewMCPServer(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := testConfig()
	mockExec := &MockService{}

	server, err := New(cfg, logger, mockExec)
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, cfg, server.config)
	assert.Equal(t, logger, server.logger)
	assert.Equal(t, mockExec, server.exec)
	assert.NotNil(t, server.mcpServer)
}

// Test basic server functionality without needing to create complex request
// structs since we can't easily instantiate external library types in tests
func TestServerCreationWithResult(t *testing.T) {
	logger := zaptest.NewLogger(t)
	exitCode := 0
	mockExec := &MockService{
		result: sandbox.Result{
			Stdout:   "hi\n",
			Stderr:   "",
			ExitCode: &exitCode,
			Outcome:  sandbox.OutcomeCompleted,
		},
	}

	server, err := New(testConfig(), logger, mockExec)
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.NotNil(t, server.GetMCPServer())
}
