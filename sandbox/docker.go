package sandbox

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/bharathreddy533/docker-project/workspace"
)

// killTimeout bounds the forced container kill issued after the supervisory
// deadline fires. The kill runs on a fresh context because the run context
// is already expired at that point.
const killTimeout = 5 * time.Second

// DockerLauncher implements Launcher over the docker CLI
type DockerLauncher struct {
	logger    *zap.Logger
	cmdRunner CommandRunner
}

// DockerLauncherOption defines a functional option for DockerLauncher
type DockerLauncherOption func(*DockerLauncher)

// WithDockerCommandRunner sets the CommandRunner for DockerLauncher
func WithDockerCommandRunner(cmdRunner CommandRunner) DockerLauncherOption {
	return func(d *DockerLauncher) {
		d.cmdRunner = cmdRunner
	}
}

// NewDockerLauncher creates a new DockerLauncher with default implementations and optional interfaces
func NewDockerLauncher(logger *zap.Logger, opts ...DockerLauncherOption) *DockerLauncher {
	launcher := &DockerLauncher{
		logger:    logger,
		cmdRunner: &RealCommandRunner{},
	}

	for _, opt := range opts {
		opt(launcher)
	}

	return launcher
}

// Run executes the workspace's source file in an ephemeral Docker container.
//
// The invocation is hardened with a fixed set of flags: the container is
// auto-removed, has no network, capped memory, process count and CPU share,
// and a read-only root filesystem with the source mounted read-only and a
// tmpfs scratch area as the only writable path. The sandboxed interpreter
// runs under an in-container timeout wrapper; the whole invocation runs
// under the strictly larger supervisory deadline. If the supervisory
// deadline fires, the container is force-killed before Run returns.
func (d *DockerLauncher) Run(ctx context.Context, ws *workspace.Workspace, spec Spec) (RawOutcome, error) {
	containerName := "pyexec-" + ws.ID

	cmdArgs := []string{
		"docker", "run",
		"--name", containerName,
		"--rm", // Remove container after execution
		"--network", "none", // Block all network access
		"--memory", fmt.Sprintf("%dm", spec.MemoryMB),
		"--pids-limit", strconv.Itoa(spec.PidsLimit), // Avoid fork bombs
		"--cpus", strconv.FormatFloat(spec.CPUs, 'f', -1, 64),
		"--read-only", // Root filesystem is read-only
		"--security-opt", "no-new-privileges:true",
		"--cap-drop", "ALL", // Drop all capabilities
		"-v", fmt.Sprintf("%s:%s:ro", ws.SourcePath, sandboxSourcePath),
		"--tmpfs", scratchMountPath + ":rw,size=16m",
		spec.Image,
		// Inner wrapper: ask the run to self-terminate at the configured
		// wall-clock limit. Unbuffered so partial output is captured.
		"timeout", strconv.Itoa(spec.InnerTimeoutSec),
		"python", "-u", sandboxSourcePath,
	}

	d.logger.Debug("launching sandbox container",
		zap.String("container", containerName),
		zap.String("image", spec.Image))

	runCtx, cancel := context.WithTimeout(ctx, spec.OuterTimeout)
	defer cancel()

	stdout, stderr, exitCode, err := d.cmdRunner.RunCommand(runCtx, cmdArgs)

	// The supervisory deadline fired: the engine or image pull is hanging.
	// Force-kill the container so nothing keeps running behind our back.
	if runCtx.Err() == context.DeadlineExceeded {
		d.logger.Warn("supervisory timeout fired, force-killing container",
			zap.String("container", containerName),
			zap.Duration("outer_timeout", spec.OuterTimeout))
		d.killContainer(containerName)

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

func (d *DockerLauncher) killContainer(name string) {
	killCtx, cancel := context.WithTimeout(context.Background(), killTimeout)
	defer cancel()

	_, stderr, code, err := d.cmdRunner.RunCommand(killCtx, []string{"docker", "kill", name})
	if err != nil || code != 0 {
		d.logger.Warn("failed to kill container after supervisory timeout",
			zap.String("container", name),
			zap.String("stderr", stderr),
			zap.Error(err))
	}
}
