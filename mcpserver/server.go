package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/bharathreddy533/docker-project/config"
	"github.com/bharathreddy533/docker-project/sandbox"
)

// MCPServer represents the MCP server
type MCPServer struct {
	config    *config.Config
	logger    *zap.Logger
	exec      sandbox.Service
	mcpServer *server.MCPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, exec sandbox.Service) (*MCPServer, error) {
	s := &MCPServer{
		config: cfg,
		logger: logger,
		exec:   exec,
	}

	// Log configuration parameters on startup
	logger.Info("configuration loaded",
		zap.String("server.transport", s.config.Server.Transport),
		zap.Int("server.http_port", s.config.Server.HTTPPort),
		zap.String("sandbox.backend", s.config.Sandbox.Backend),
		zap.String("sandbox.image", s.config.Sandbox.Image),
		zap.Int("sandbox.inner_timeout_sec", s.config.Sandbox.InnerTimeoutSec),
		zap.Int("sandbox.outer_margin_sec", s.config.Sandbox.OuterMarginSec),
		zap.Int("sandbox.memory_mb", s.config.Sandbox.MemoryMB),
		zap.Int("sandbox.pids_limit", s.config.Sandbox.PidsLimit),
		zap.Float64("sandbox.cpus", s.config.Sandbox.CPUs),
		zap.Int("sandbox.max_source_chars", s.config.Sandbox.MaxSourceChars),
		zap.Int("sandbox.max_output_bytes", s.config.Sandbox.MaxOutputBytes),
	)

	// Create the MCP server
	s.mcpServer = server.NewMCPServer("python-playground", "Runs Python snippets in an isolated sandbox")

	// Register the run_python_code tool
	s.registerRunPythonCodeTool()

	return s, nil
}

// registerRunPythonCodeTool registers the run_python_code tool
func (s *MCPServer) registerRunPythonCodeTool() {
	tool := mcp.Tool{
		Name:        "run_python_code",
		Description: "Execute a Python snippet in a sandboxed environment with no network access and strict resource limits",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "Python source code to execute",
				},
			},
			Required: []string{"code"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleRunPythonCode)
}

// handleRunPythonCode handles the run_python_code tool
func (s *MCPServer) handleRunPythonCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}

	if len(code) == 0 {
		return nil, fmt.Errorf("no code provided")
	}

	if len(code) > s.config.Sandbox.MaxSourceChars {
		return nil, fmt.Errorf("code too long: max %d characters allowed", s.config.Sandbox.MaxSourceChars)
	}

	s.logger.Info("code execution requested", zap.Int("source_len", len(code)))

	result, err := s.exec.Execute(ctx, code)
	if err != nil {
		s.logger.Error("sandbox execution failed", zap.Error(err))
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Execution failed: %v", err),
				},
			},
			IsError: true,
		}, nil
	}

	// A timeout is an expected outcome of the submitted code, not a tool
	// failure.
	if result.Outcome.TimedOut() {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: result.Message,
				},
			},
		}, nil
	}

	payload, err := json.Marshal(struct {
		Stdout   string `json:"stdout"`
		Stderr   string `json:"stderr"`
		ExitCode *int   `json:"exit_code"`
	}{
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
		ExitCode: result.ExitCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(payload),
			},
		},
	}, nil
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// GetMCPServer returns the underlying MCP server
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
