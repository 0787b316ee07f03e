package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lberes/taskdock/internal/adapters/fsstore"
	"github.com/lberes/taskdock/internal/core/domain"
	"github.com/lberes/taskdock/internal/core/ports"
)

// fakeRuntime is an in-memory container runtime for tests.
type fakeRuntime struct {
	mu       sync.Mutex
	states   map[string]ports.ContainerState
	errs     map[string]error
	stopped  []string
	removed  []string
	images   []string
	inspects int
	logs     string
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		states: map[string]ports.ContainerState{},
		errs:   map[string]error{},
	}
}

func (f *fakeRuntime) setState(containerID, status string, exitCode int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[containerID] = ports.ContainerState{Status: status, ExitCode: exitCode}
}

func (f *fakeRuntime) Inspect(_ context.Context, containerID string) (ports.ContainerState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inspects++
	if err, ok := f.errs[containerID]; ok {
		return ports.ContainerState{}, err
	}
	state, ok := f.states[containerID]
	if !ok {
		return ports.ContainerState{}, fmt.Errorf("%w: %s", domain.ErrContainerNotFound, containerID)
	}
	return state, nil
}

func (f *fakeRuntime) Stop(_ context.Context, containerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, containerID)
	return nil
}

func (f *fakeRuntime) Remove(_ context.Context, containerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, containerID)
	return nil
}

func (f *fakeRuntime) RemoveImage(_ context.Context, imageName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = append(f.images, imageName)
	return nil
}

func (f *fakeRuntime) Logs(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logs, nil
}

func (f *fakeRuntime) inspectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inspects
}

// fakeSummarizer returns a fixed title or error.
type fakeSummarizer struct {
	title string
	err   error
}

func (f *fakeSummarizer) Summarize(context.Context, string) (string, error) {
	return f.title, f.err
}

// fakeNotifier counts delivered notifications.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeNotifier) NotifyProgress(_ context.Context, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, message)
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestManager(t *testing.T, rt ports.ContainerRuntime, sum ports.Summarizer) *Manager {
	t.Helper()
	store, err := fsstore.New(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	return NewManager(zerolog.Nop(), store, rt, sum, Config{
		CostDataDir: t.TempDir(),
	})
}
