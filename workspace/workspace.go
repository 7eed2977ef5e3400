package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SourceFileName is the file the submitted source is written to and the
// name it is mounted under inside the sandbox.
const SourceFileName = "script.py"

const (
	dirPermission  = 0o700
	filePermission = 0o600

	// createAttempts bounds the retry loop on directory-name collisions.
	createAttempts = 3
)

// Workspace is an exclusively-owned staging directory holding exactly one
// source file for the duration of one execution.
type Workspace struct {
	ID         string
	Dir        string
	SourcePath string
}

// FileSystem defines an interface for the file system operations the
// manager needs
type FileSystem interface {
	Mkdir(path string, perm os.FileMode) error
	WriteFile(filename string, data []byte, perm os.FileMode) error
	RemoveAll(path string) error
}

// RealFileSystem implements FileSystem using actual file system operations
type RealFileSystem struct{}

func (RealFileSystem) Mkdir(path string, perm os.FileMode) error {
	return os.Mkdir(path, perm)
}

func (RealFileSystem) WriteFile(filename string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filename, data, perm)
}

func (RealFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Manager creates and destroys workspaces under a fixed root directory.
type Manager struct {
	logger *zap.Logger
	root   string
	fs     FileSystem
}

// ManagerOption defines a functional option for Manager
type ManagerOption func(*Manager)

// WithRoot sets the directory workspaces are created under
func WithRoot(root string) ManagerOption {
	return func(m *Manager) {
		m.root = root
	}
}

// WithFileSystem sets the FileSystem for the Manager
func WithFileSystem(fs FileSystem) ManagerOption {
	return func(m *Manager) {
		m.fs = fs
	}
}

// NewManager creates a Manager rooted at the system temp directory by default
func NewManager(logger *zap.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		logger: logger,
		root:   os.TempDir(),
		fs:     RealFileSystem{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Create allocates a fresh, collision-free directory named by a random
// token and writes the source into it verbatim. Uniqueness comes from the
// token rather than a counter so concurrent requests never race on a name.
func (m *Manager) Create(source string) (*Workspace, error) {
	for attempt := 0; attempt < createAttempts; attempt++ {
		id := uuid.NewString()[:8]
		dir := filepath.Join(m.root, "exec-"+id)

		if err := m.fs.Mkdir(dir, dirPermission); err != nil {
			if os.IsExist(err) {
				// Token collision, draw a fresh one.
				continue
			}
			return nil, fmt.Errorf("failed to create workspace directory: %w", err)
		}

		sourcePath := filepath.Join(dir, SourceFileName)
		if err := m.fs.WriteFile(sourcePath, []byte(source), filePermission); err != nil {
			if rmErr := m.fs.RemoveAll(dir); rmErr != nil {
				m.logger.Warn("failed to remove workspace after write failure",
					zap.String("path", dir), zap.Error(rmErr))
			}
			return nil, fmt.Errorf("failed to write source file: %w", err)
		}

		m.logger.Debug("workspace created",
			zap.String("workspace_id", id),
			zap.String("path", dir))

		return &Workspace{ID: id, Dir: dir, SourcePath: sourcePath}, nil
	}

	return nil, fmt.Errorf("failed to allocate a unique workspace directory after %d attempts", createAttempts)
}

// Destroy removes the workspace directory and everything in it. Failures
// are logged and swallowed so cleanup can run on every exit path without
// disturbing the already-computed execution result.
func (m *Manager) Destroy(ws *Workspace) {
	if ws == nil {
		return
	}

	if err := m.fs.RemoveAll(ws.Dir); err != nil {
		m.logger.Warn("failed to remove workspace",
			zap.String("workspace_id", ws.ID),
			zap.String("path", ws.Dir),
			zap.Error(err))
		return
	}

	m.logger.Debug("workspace removed", zap.String("workspace_id", ws.ID))
}
