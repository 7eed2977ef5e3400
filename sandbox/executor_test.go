package sandbox

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bharathreddy533/docker-project/workspace"
)

// FakeLauncher reads the staged source at run time and returns a canned
// outcome, recording which workspace it saw.
type FakeLauncher struct {
	mu      sync.Mutex
	outcome RawOutcome
	err     error
	sources []string
	dirs    []string
}

func (f *FakeLauncher) Run(_ context.Context, ws *workspace.Workspace, _ Spec) (RawOutcome, error) {
	data, readErr := os.ReadFile(ws.SourcePath)
	if readErr != nil {
		return RawOutcome{}, readErr
	}

	f.mu.Lock()
	f.sources = append(f.sources, string(data))
	f.dirs = append(f.dirs, ws.Dir)
	f.mu.Unlock()

	return f.outcome, f.err
}

// EchoLauncher returns the staged source as stdout, which makes isolation
// failures between concurrent requests directly visible.
type EchoLauncher struct{}

func (EchoLauncher) Run(_ context.Context, ws *workspace.Workspace, _ Spec) (RawOutcome, error) {
	data, err := os.ReadFile(ws.SourcePath)
	if err != nil {
		return RawOutcome{}, err
	}
	return RawOutcome{Stdout: string(data), Exited: true}, nil
}

func newTestEngine(t *testing.T, launcher Launcher) *Engine {
	t.Helper()
	logger := zaptest.NewLogger(t)
	manager := workspace.NewManager(logger, workspace.WithRoot(t.TempDir()))
	return NewEngine(logger, testSpec(), manager, launcher)
}

func TestEngineExecute(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		fake := &FakeLauncher{outcome: RawOutcome{Stdout: "hi\n", Exited: true}}
		engine := newTestEngine(t, fake)

		result, err := engine.Execute(context.Background(), `print("hi")`)
		require.NoError(t, err)

		assert.Equal(t, OutcomeCompleted, result.Outcome)
		assert.Equal(t, "hi\n", result.Stdout)
		require.NotNil(t, result.ExitCode)
		assert.Equal(t, 0, *result.ExitCode)

		// The launcher saw the source verbatim, and the workspace is gone
		// now that the call has returned.
		require.Len(t, fake.sources, 1)
		assert.Equal(t, `print("hi")`, fake.sources[0])
		_, statErr := os.Stat(fake.dirs[0])
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("WorkspaceDestroyedOnTimeout", func(t *testing.T) {
		fake := &FakeLauncher{outcome: RawOutcome{OuterTimedOut: true}}
		engine := newTestEngine(t, fake)

		result, err := engine.Execute(context.Background(), "while True: pass")
		require.NoError(t, err)

		assert.Equal(t, OutcomeOuterTimeout, result.Outcome)
		assert.Nil(t, result.ExitCode)
		assert.Contains(t, result.Message, "timed out after 10 seconds")

		require.Len(t, fake.dirs, 1)
		_, statErr := os.Stat(fake.dirs[0])
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("WorkspaceDestroyedOnLaunchFailure", func(t *testing.T) {
		fake := &FakeLauncher{err: errors.New("docker daemon unreachable")}
		engine := newTestEngine(t, fake)

		_, err := engine.Execute(context.Background(), "pass")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sandbox launch failed")

		require.Len(t, fake.dirs, 1)
		_, statErr := os.Stat(fake.dirs[0])
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("InnerTimeoutClassified", func(t *testing.T) {
		fake := &FakeLauncher{outcome: RawOutcome{ExitCode: 124, Exited: true, InnerTimedOut: true}}
		engine := newTestEngine(t, fake)

		result, err := engine.Execute(context.Background(), "while True: pass")
		require.NoError(t, err)
		assert.Equal(t, OutcomeInnerTimeout, result.Outcome)
		assert.True(t, result.Outcome.TimedOut())
	})
}

func TestEngineConcurrentExecutionsAreIsolated(t *testing.T) {
	engine := newTestEngine(t, EchoLauncher{})

	const workers = 8
	results := make([]Result, workers)
	sources := make([]string, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		sources[i] = "print(" + string(rune('0'+i)) + ")"
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := engine.Execute(context.Background(), sources[i])
			assert.NoError(t, err)
			results[i] = result
		}(i)
	}
	wg.Wait()

	// Each result is fully determined by its own source.
	for i := 0; i < workers; i++ {
		assert.Equal(t, sources[i], results[i].Stdout)
	}
}
