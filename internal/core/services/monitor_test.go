package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lberes/taskdock/internal/core/domain"
)

func newTestSupervisor(m *Manager) *Supervisor {
	return NewSupervisor(zerolog.Nop(), m, 20*time.Millisecond, 5*time.Millisecond)
}

func startMonitoredJob(t *testing.T, m *Manager, containerID string) string {
	t.Helper()
	jobID, err := m.Create(context.Background(), "task", "img", "b", "main", "")
	require.NoError(t, err)
	require.True(t, m.UpdateStatus(jobID, domain.StatusRunning, StatusUpdate{ContainerID: containerID}))
	return jobID
}

func waitForStatus(t *testing.T, m *Manager, jobID string, want domain.Status) *domain.Job {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case <-deadline:
			job, _ := m.Get(jobID)
			t.Fatalf("job %s never reached %s, last seen: %+v", jobID, want, job)
		case <-time.After(10 * time.Millisecond):
			if job, ok := m.Get(jobID); ok && job.Status == want {
				return job
			}
		}
	}
}

func TestSupervisor_WatcherCompletesJob(t *testing.T) {
	rt := newFakeRuntime()
	m := newTestManager(t, rt, &fakeSummarizer{title: "Fix the reported parser bug"})
	sup := newTestSupervisor(m)

	jobID := startMonitoredJob(t, m, "c1")
	rt.setState("c1", "running", 0)

	sup.Watch(context.Background(), jobID, "c1")

	// Let a few polls pass, then exit the container cleanly.
	time.Sleep(50 * time.Millisecond)
	rt.setState("c1", "exited", 0)

	waitForStatus(t, m, jobID, domain.StatusCompleted)
	sup.Wait()
}

func TestSupervisor_WatcherRecordsCostDataOnSuccess(t *testing.T) {
	rt := newFakeRuntime()
	m := newTestManager(t, rt, &fakeSummarizer{title: "Fix the reported parser bug"})
	sup := newTestSupervisor(m)

	jobID := startMonitoredJob(t, m, "c1")

	costDir := filepath.Join(m.cfg.CostDataDir, jobID)
	require.NoError(t, os.MkdirAll(costDir, 0o755))
	costDoc := `{
		"summary": {"total_cost": 0.42},
		"cost": {"input_tokens": 900, "output_tokens": 150},
		"git_stats": {"lines_added": 12, "lines_deleted": 3, "total_lines_changed": 15, "files_changed": 2, "commits_made": 1},
		"session_start": "2026-08-30T10:00:00Z",
		"last_update": "2026-08-30T10:02:30Z"
	}`
	require.NoError(t, os.WriteFile(filepath.Join(costDir, "session_cost.json"), []byte(costDoc), 0o644))

	rt.setState("c1", "exited", 0)
	sup.Watch(context.Background(), jobID, "c1")

	job := waitForStatus(t, m, jobID, domain.StatusCompleted)
	sup.Wait()

	assert.InDelta(t, 0.42, job.CostInfo.TotalCost, 1e-9)
	assert.Equal(t, 900, job.CostInfo.InputTokens)
	assert.Equal(t, 150, job.CostInfo.OutputTokens)
	assert.Equal(t, 150, job.CostInfo.SessionDuration)
	assert.Equal(t, 15, job.GitStats.TotalLinesChanged)
}

func TestSupervisor_MissingCostFileStillCompletes(t *testing.T) {
	rt := newFakeRuntime()
	m := newTestManager(t, rt, &fakeSummarizer{title: "Fix the reported parser bug"})
	sup := newTestSupervisor(m)

	jobID := startMonitoredJob(t, m, "c1")
	rt.setState("c1", "exited", 0)

	sup.Watch(context.Background(), jobID, "c1")

	job := waitForStatus(t, m, jobID, domain.StatusCompleted)
	sup.Wait()
	assert.Zero(t, job.CostInfo.TotalCost)
}

func TestSupervisor_WatcherFailsJobOnNonzeroExit(t *testing.T) {
	rt := newFakeRuntime()
	m := newTestManager(t, rt, &fakeSummarizer{title: "Fix the reported parser bug"})
	sup := newTestSupervisor(m)

	jobID := startMonitoredJob(t, m, "c1")
	rt.setState("c1", "exited", 2)

	sup.Watch(context.Background(), jobID, "c1")

	job := waitForStatus(t, m, jobID, domain.StatusFailed)
	sup.Wait()
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, "container exited with code 2", *job.ErrorMessage)
}

func TestSupervisor_WatcherFailsJobWhenContainerVanishes(t *testing.T) {
	rt := newFakeRuntime()
	m := newTestManager(t, rt, &fakeSummarizer{title: "Fix the reported parser bug"})
	sup := newTestSupervisor(m)

	jobID := startMonitoredJob(t, m, "ghost")
	sup.Watch(context.Background(), jobID, "ghost")

	job := waitForStatus(t, m, jobID, domain.StatusFailed)
	sup.Wait()
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, "container stopped unexpectedly", *job.ErrorMessage)
}

func TestSupervisor_WatcherExitsWhenJobAlreadyTerminal(t *testing.T) {
	rt := newFakeRuntime()
	m := newTestManager(t, rt, &fakeSummarizer{title: "Fix the reported parser bug"})
	sup := newTestSupervisor(m)

	jobID := startMonitoredJob(t, m, "c1")
	rt.setState("c1", "running", 0)
	require.True(t, m.UpdateStatus(jobID, domain.StatusCancelled, StatusUpdate{}))

	sup.Watch(context.Background(), jobID, "c1")
	sup.Wait()

	job, ok := m.Get(jobID)
	require.True(t, ok)
	assert.Equal(t, domain.StatusCancelled, job.Status)
}

func TestSupervisor_SecondWatchForSameJobIsNoOp(t *testing.T) {
	rt := newFakeRuntime()
	m := newTestManager(t, rt, &fakeSummarizer{title: "Fix the reported parser bug"})
	sup := newTestSupervisor(m)

	jobID := startMonitoredJob(t, m, "c1")
	rt.setState("c1", "running", 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sup.Watch(ctx, jobID, "c1")
	sup.Watch(ctx, jobID, "c1")

	sup.mu.Lock()
	active := len(sup.active)
	sup.mu.Unlock()
	assert.Equal(t, 1, active)

	cancel()
	sup.Wait()
}

func TestSupervisor_ContextCancellationStopsWatchers(t *testing.T) {
	rt := newFakeRuntime()
	m := newTestManager(t, rt, &fakeSummarizer{title: "Fix the reported parser bug"})
	sup := newTestSupervisor(m)

	jobID := startMonitoredJob(t, m, "c1")
	rt.setState("c1", "running", 0)

	ctx, cancel := context.WithCancel(context.Background())
	sup.Watch(ctx, jobID, "c1")
	cancel()

	done := make(chan struct{})
	go func() {
		sup.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not exit on context cancellation")
	}

	job, ok := m.Get(jobID)
	require.True(t, ok)
	assert.Equal(t, domain.StatusRunning, job.Status, "cancellation must not flip the job state")
}
