// Package docker implements the container runtime port over the Docker
// Engine API.
package docker

import (
	"bytes"
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/lberes/taskdock/internal/core/domain"
	"github.com/lberes/taskdock/internal/core/ports"
)

// stopGraceSeconds is handed to the daemon as the SIGTERM-to-SIGKILL grace
// period when stopping a container.
const stopGraceSeconds = 10

type Runtime struct {
	cli *client.Client
}

var _ ports.ContainerRuntime = (*Runtime)(nil)

func NewRuntime() (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Runtime{cli: cli}, nil
}

func (r *Runtime) Inspect(ctx context.Context, containerID string) (ports.ContainerState, error) {
	inspect, err := r.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		if client.IsErrNotFound(err) {
			return ports.ContainerState{}, fmt.Errorf("%w: %s", domain.ErrContainerNotFound, containerID)
		}
		return ports.ContainerState{}, fmt.Errorf("inspect container: %w", err)
	}
	if inspect.State == nil {
		return ports.ContainerState{}, fmt.Errorf("inspect container %s: no state reported", containerID)
	}
	return ports.ContainerState{
		Status:   inspect.State.Status,
		ExitCode: inspect.State.ExitCode,
	}, nil
}

// Stop is tolerant of containers that are already gone.
func (r *Runtime) Stop(ctx context.Context, containerID string) error {
	grace := stopGraceSeconds
	err := r.cli.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &grace})
	if err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("stop container: %w", err)
	}
	return nil
}

func (r *Runtime) Remove(ctx context.Context, containerID string) error {
	err := r.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true})
	if err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("remove container: %w", err)
	}
	return nil
}

func (r *Runtime) RemoveImage(ctx context.Context, imageName string) error {
	_, err := r.cli.ImageRemove(ctx, imageName, image.RemoveOptions{})
	if err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// Logs returns the container's combined output. The engine multiplexes
// stdout and stderr on one stream for non-TTY containers, so the copy goes
// through stdcopy.
func (r *Runtime) Logs(ctx context.Context, containerID string) (string, error) {
	rc, err := r.cli.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		if client.IsErrNotFound(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrContainerNotFound, containerID)
		}
		return "", fmt.Errorf("container logs: %w", err)
	}
	defer rc.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, rc); err != nil {
		return "", fmt.Errorf("read container logs: %w", err)
	}
	return stdout.String() + stderr.String(), nil
}
