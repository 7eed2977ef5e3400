package sandbox

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/bharathreddy533/docker-project/workspace"
)

// PodmanLauncher implements Launcher over the podman CLI. It applies the
// same hardened invocation as the Docker launcher; podman accepts the same
// flag set.
type PodmanLauncher struct {
	logger    *zap.Logger
	cmdRunner CommandRunner
}

// PodmanLauncherOption defines a functional option for PodmanLauncher
type PodmanLauncherOption func(*PodmanLauncher)

// WithPodmanCommandRunner sets the CommandRunner for PodmanLauncher
func WithPodmanCommandRunner(cmdRunner CommandRunner) PodmanLauncherOption {
	return func(p *PodmanLauncher) {
		p.cmdRunner = cmdRunner
	}
}

// NewPodmanLauncher creates a new PodmanLauncher with default implementations and optional interfaces
func NewPodmanLauncher(logger *zap.Logger, opts ...PodmanLauncherOption) *PodmanLauncher {
	launcher := &PodmanLauncher{
		logger:    logger,
		cmdRunner: &RealCommandRunner{},
	}

	for _, opt := range opts {
		opt(launcher)
	}

	return launcher
}

// Run executes the workspace's source file in an ephemeral Podman container.
// See DockerLauncher.Run for the invocation contract.
func (p *PodmanLauncher) Run(ctx context.Context, ws *workspace.Workspace, spec Spec) (RawOutcome, error) {
	containerName := "pyexec-" + ws.ID

	cmdArgs := []string{
		"podman", "run",
		"--name", containerName,
		"--rm",
		"--network", "none",
		"--memory", fmt.Sprintf("%dm", spec.MemoryMB),
		"--pids-limit", strconv.Itoa(spec.PidsLimit),
		"--cpus", strconv.FormatFloat(spec.CPUs, 'f', -1, 64),
		"--read-only",
		"--security-opt", "no-new-privileges:true",
		"--cap-drop", "ALL",
		"-v", fmt.Sprintf("%s:%s:ro", ws.SourcePath, sandboxSourcePath),
		"--tmpfs", scratchMountPath + ":rw,size=16m",
		spec.Image,
		"timeout", strconv.Itoa(spec.InnerTimeoutSec),
		"python", "-u", sandboxSourcePath,
	}

	p.logger.Debug("launching sandbox container",
		zap.String("container", containerName),
		zap.String("image", spec.Image))

	runCtx, cancel := context.WithTimeout(ctx, spec.OuterTimeout)
	defer cancel()

	stdout, stderr, exitCode, err := p.cmdRunner.RunCommand(runCtx, cmdArgs)

	if runCtx.Err() == context.DeadlineExceeded {
		p.logger.Warn("supervisory timeout fired, force-killing container",
			zap.String("container", containerName),
			zap.Duration("outer_timeout", spec.OuterTimeout))
		p.killContainer(containerName)

		return RawOutcome{
			Stdout:        stdout,
			Stderr:        stderr,
			OuterTimedOut: true,
		}, nil
	}

	if err != nil {
		return RawOutcome{}, fmt.Errorf("failed to run container: %w", err)
	}

	return RawOutcome{
		Stdout:        stdout,
		Stderr:        stderr,
		ExitCode:      exitCode,
		Exited:        true,
		InnerTimedOut: innerTimeoutSignaled(exitCode, stderr),
	}, nil
}

func (p *PodmanLauncher) killContainer(name string) {
	killCtx, cancel := context.WithTimeout(context.Background(), killTimeout)
	defer cancel()

	_, stderr, code, err := p.cmdRunner.RunCommand(killCtx, []string{"podman", "kill", name})
	if err != nil || code != 0 {
		p.logger.Warn("failed to kill container after supervisory timeout",
			zap.String("container", name),
			zap.String("stderr", stderr),
			zap.Error(err))
	}
}
