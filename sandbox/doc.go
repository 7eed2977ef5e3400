// Package sandbox provides secure code execution capabilities.
//
// The sandbox package implements the execution engine for running untrusted
// Python snippets in isolated containers, driven through the Docker or
// Podman CLI. Each run gets an ephemeral container with no network, capped
// memory, process count and CPU share, a read-only root filesystem, and two
// independent wall-clock limits: an in-container wrapper that asks the run
// to terminate cleanly, and a supervisory deadline around the whole
// invocation that force-kills the container if the engine itself hangs.
//
// Usage:
//
//	launcher, err := sandbox.NewLauncher(logger, "docker")
//	engine := sandbox.NewEngine(logger, sandbox.NewSpec(cfg), manager, launcher)
//	result, err := engine.Execute(ctx, `print("Hello, World!")`)
package sandbox
