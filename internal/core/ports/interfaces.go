package ports

import (
	"context"

	"github.com/lberes/taskdock/internal/core/domain"
)

// JobStore abstracts the persistent job document storage.
//
// Read and List never surface corruption to callers: a document that is
// oversized, unparseable, or fails schema validation is treated as absent.
// Write failures do propagate, since a create or update that silently did
// not happen is worse than an error.
type JobStore interface {
	// Write durably replaces the document for job.JobID.
	Write(job *domain.Job) error

	// Read returns the document for jobID, or false if it is absent or invalid.
	Read(jobID string) (*domain.Job, bool)

	// List enumerates all valid documents. Invalid documents are skipped.
	List() []*domain.Job

	// Lock acquires the per-job exclusive lock and returns the release
	// function. Every read-modify-write sequence on a job must hold the
	// lock for the whole sequence.
	Lock(jobID string) (release func())

	// Exists reports whether a document for jobID is on disk, without
	// parsing it.
	Exists(jobID string) bool

	// Remove deletes the document. Removing an absent document is not an
	// error.
	Remove(jobID string) error
}

// ContainerState is the observed runtime state of a container.
type ContainerState struct {
	Status   string // e.g. "running", "exited"
	ExitCode int
}

// ContainerRuntime abstracts the external container runtime (Docker).
// All calls must be bounded by the caller-supplied context.
type ContainerRuntime interface {
	// Inspect returns the current state of a container. A vanished
	// container yields an error wrapping domain.ErrContainerNotFound.
	Inspect(ctx context.Context, containerID string) (ContainerState, error)

	Stop(ctx context.Context, containerID string) error
	Remove(ctx context.Context, containerID string) error
	RemoveImage(ctx context.Context, imageName string) error

	// Logs returns the container's combined stdout and stderr.
	Logs(ctx context.Context, containerID string) (string, error)
}

// Summarizer produces a short human-readable title for a task. It may fail
// or time out; callers are expected to fall back gracefully.
type Summarizer interface {
	Summarize(ctx context.Context, taskSpec string) (string, error)
}

// Notifier is a fire-and-forget progress notification sink.
type Notifier interface {
	NotifyProgress(ctx context.Context, message string) error
}
