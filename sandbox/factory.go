package sandbox

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLauncher creates an appropriate sandbox launcher for the configured
// container runtime backend
func NewLauncher(logger *zap.Logger, backend string) (Launcher, error) {
	switch backend {
	case "docker":
		return NewDockerLauncher(logger), nil
	case "podman":
		return NewPodmanLauncher(logger), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}
