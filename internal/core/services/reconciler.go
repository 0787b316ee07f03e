package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lberes/taskdock/internal/core/domain"
)

// Sync brings persisted job statuses in line with observed container state.
// It runs once per List call: every job that believes it is queued or
// running and has a container is checked against the runtime. A container
// that vanished without a recorded exit is assumed killed externally, so
// the job fails rather than staying stuck in limbo.
func (m *Manager) Sync(ctx context.Context) {
	for _, job := range m.store.List() {
		if job.Status != domain.StatusQueued && job.Status != domain.StatusRunning {
			continue
		}
		if job.ContainerID == nil || *job.ContainerID == "" {
			continue
		}
		m.observeContainer(ctx, job.JobID, *job.ContainerID, job.Status)
	}
}

// observeContainer applies the reconciliation transition rules for one
// container observation. It returns true when the job reached a terminal
// state (or the container is confirmed gone), which tells the background
// monitor to stop polling.
func (m *Manager) observeContainer(ctx context.Context, jobID, containerID string, current domain.Status) bool {
	ictx, cancel := context.WithTimeout(ctx, m.cfg.InspectTimeout)
	defer cancel()

	state, err := m.runtime.Inspect(ictx, containerID)
	if err != nil {
		msg := inspectFailureMessage(err)
		m.log.Warn().Str("job_id", jobID).Str("container_id", containerID).Err(err).
			Msg("container observation failed")
		m.UpdateStatus(jobID, domain.StatusFailed, StatusUpdate{ErrorMessage: msg})
		return true
	}

	switch {
	case state.Status == "exited" && state.ExitCode == 0:
		m.extractCostData(jobID)
		m.UpdateStatus(jobID, domain.StatusCompleted, StatusUpdate{})
		m.log.Info().Str("job_id", jobID).Msg("job completed")
		return true

	case state.Status == "exited":
		m.UpdateStatus(jobID, domain.StatusFailed, StatusUpdate{
			ErrorMessage: fmt.Sprintf("container exited with code %d", state.ExitCode),
		})
		m.log.Info().Str("job_id", jobID).Int("exit_code", state.ExitCode).Msg("job failed")
		return true

	case state.Status == "running" && current == domain.StatusQueued:
		m.UpdateStatus(jobID, domain.StatusRunning, StatusUpdate{})
		return false
	}

	return false
}

func inspectFailureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrContainerNotFound):
		return "container stopped unexpectedly"
	case errors.Is(err, context.DeadlineExceeded):
		return "container status check timed out"
	default:
		return fmt.Sprintf("container status check failed: %v", err)
	}
}
