package sandbox

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bharathreddy533/docker-project/config"
	"github.com/bharathreddy533/docker-project/workspace"
)

// Service is the single inbound operation the transports consume.
type Service interface {
	Execute(ctx context.Context, source string) (Result, error)
}

// Engine composes the workspace manager, launcher and normalizer into one
// execution pipeline. It holds no per-request state; concurrent requests
// each get their own workspace and container.
type Engine struct {
	logger     *zap.Logger
	spec       Spec
	workspaces *workspace.Manager
	launcher   Launcher
}

// NewEngine creates an Engine from its parts.
func NewEngine(logger *zap.Logger, spec Spec, workspaces *workspace.Manager, launcher Launcher) *Engine {
	return &Engine{
		logger:     logger,
		spec:       spec,
		workspaces: workspaces,
		launcher:   launcher,
	}
}

// NewService wires a complete execution service from the application
// configuration.
func NewService(logger *zap.Logger, cfg *config.Config) (Service, error) {
	launcher, err := NewLauncher(logger, cfg.Sandbox.Backend)
	if err != nil {
		return nil, err
	}

	return NewEngine(logger, NewSpec(cfg), workspace.NewManager(logger), launcher), nil
}

// Execute runs one already-validated source snippet through the sandbox and
// returns its normalized result. Sandbox-internal failures (crashes,
// timeouts) come back as Result data; only infrastructure faults (workspace
// creation, container launch) return an error.
func (e *Engine) Execute(ctx context.Context, source string) (Result, error) {
	ws, err := e.workspaces.Create(source)
	if err != nil {
		return Result{}, fmt.Errorf("failed to stage source: %w", err)
	}
	// Cleanup runs on every path out of this function, including launch
	// failure and both timeout classes.
	defer e.workspaces.Destroy(ws)

	raw, err := e.launcher.Run(ctx, ws, e.spec)
	if err != nil {
		return Result{}, fmt.Errorf("sandbox launch failed: %w", err)
	}

	result := Normalize(raw, e.spec)

	switch result.Outcome {
	case OutcomeOuterTimeout:
		// Infrastructure trouble: the engine hung, not just the snippet.
		e.logger.Warn("sandbox invocation exceeded supervisory timeout",
			zap.String("workspace_id", ws.ID),
			zap.Duration("outer_timeout", e.spec.OuterTimeout))
	case OutcomeInnerTimeout:
		e.logger.Info("sandboxed program hit the wall-clock limit",
			zap.String("workspace_id", ws.ID),
			zap.Int("inner_timeout_sec", e.spec.InnerTimeoutSec))
	default:
		e.logger.Info("execution completed",
			zap.String("workspace_id", ws.ID),
			zap.Intp("exit_code", result.ExitCode),
			zap.Int("stdout_len", len(result.Stdout)),
			zap.Int("stderr_len", len(result.Stderr)))
	}

	return result, nil
}
