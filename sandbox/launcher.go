package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/bharathreddy533/docker-project/config"
	"github.com/bharathreddy533/docker-project/workspace"
)

// Paths inside the sandbox. The source is bind-mounted read-only at a fixed
// location; the scratch mount is the only writable part of the filesystem.
const (
	sandboxSourcePath = "/app/script.py"
	scratchMountPath  = "/scratch"
)

// Spec is the fixed policy applied to every run. It is built once from the
// process configuration and never derived from untrusted input.
type Spec struct {
	Image           string
	InnerTimeoutSec int
	OuterTimeout    time.Duration
	MemoryMB        int
	PidsLimit       int
	CPUs            float64
	MaxOutputBytes  int
}

// NewSpec builds the sandbox policy from the application configuration.
func NewSpec(cfg *config.Config) Spec {
	return Spec{
		Image:           cfg.Sandbox.Image,
		InnerTimeoutSec: cfg.Sandbox.InnerTimeoutSec,
		OuterTimeout:    cfg.OuterTimeout(),
		MemoryMB:        cfg.Sandbox.MemoryMB,
		PidsLimit:       cfg.Sandbox.PidsLimit,
		CPUs:            cfg.Sandbox.CPUs,
		MaxOutputBytes:  cfg.Sandbox.MaxOutputBytes,
	}
}

// RawOutcome is the uninterpreted result of one container invocation.
// Exactly one of the following holds: the process exited and Exited is set,
// or the supervisory deadline fired and OuterTimedOut is set.
type RawOutcome struct {
	Stdout        string
	Stderr        string
	ExitCode      int
	Exited        bool
	InnerTimedOut bool
	OuterTimedOut bool
}

// Launcher runs one workspace's source inside an ephemeral container.
type Launcher interface {
	Run(ctx context.Context, ws *workspace.Workspace, spec Spec) (RawOutcome, error)
}

// CommandRunner defines an interface for executing system commands
type CommandRunner interface {
	RunCommand(ctx context.Context, args []string) (stdout, stderr string, exitCode int, err error)
}

// RealCommandRunner implements CommandRunner using actual exec commands
type RealCommandRunner struct{}

// RunCommand executes the given command with arguments
func (RealCommandRunner) RunCommand(ctx context.Context, args []string) (stdout, stderr string, exitCode int, err error) {
	if len(args) < 1 {
		return "", "", 0, fmt.Errorf("no command provided")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // argv is built from fixed policy, never from user input

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()

	exitCode = 0
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			exitCode = exitError.ExitCode()
		} else {
			return "", "", 0, err
		}
	}

	return stdoutBuf.String(), stderrBuf.String(), exitCode, nil
}
