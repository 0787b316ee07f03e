package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lberes/taskdock/internal/core/domain"
	"github.com/lberes/taskdock/internal/core/ports"
)

const (
	// idLength is the length of the UUID-derived job identifier.
	idLength = 8

	// idRetries bounds the regenerate-on-collision loop at create time.
	idRetries = 5

	// cleanupParallelism bounds concurrent container teardown during
	// CleanupTerminal.
	cleanupParallelism = 4

	fallbackSummary = "Task processing..."
)

// Config carries the manager's tunables. Zero values fall back to the
// defaults below.
type Config struct {
	CostDataDir        string
	InspectTimeout     time.Duration
	StopTimeout        time.Duration
	RemoveTimeout      time.Duration
	RemoveImageTimeout time.Duration
	LogsTimeout        time.Duration
	SummaryTimeout     time.Duration
}

func (c *Config) applyDefaults() {
	if c.CostDataDir == "" {
		c.CostDataDir = ".ai_cost_data"
	}
	if c.InspectTimeout <= 0 {
		c.InspectTimeout = 15 * time.Second
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = 10 * time.Second
	}
	if c.RemoveTimeout <= 0 {
		c.RemoveTimeout = 10 * time.Second
	}
	if c.RemoveImageTimeout <= 0 {
		c.RemoveImageTimeout = 30 * time.Second
	}
	if c.LogsTimeout <= 0 {
		c.LogsTimeout = 30 * time.Second
	}
	if c.SummaryTimeout <= 0 {
		c.SummaryTimeout = 15 * time.Second
	}
}

// Manager is the only component that constructs or mutates job documents.
// It encodes the status state machine; all persistence goes through the
// store under the per-job lock.
type Manager struct {
	log        zerolog.Logger
	store      ports.JobStore
	runtime    ports.ContainerRuntime
	summarizer ports.Summarizer
	cfg        Config
}

func NewManager(log zerolog.Logger, store ports.JobStore, runtime ports.ContainerRuntime, summarizer ports.Summarizer, cfg Config) *Manager {
	cfg.applyDefaults()
	return &Manager{
		log:        log,
		store:      store,
		runtime:    runtime,
		summarizer: summarizer,
		cfg:        cfg,
	}
}

// Create allocates a fresh job in the queued state and persists it.
func (m *Manager) Create(ctx context.Context, taskSpec, baseImage, branchName, baseBranch string, githubIssue string) (string, error) {
	jobID, err := m.newJobID()
	if err != nil {
		return "", err
	}

	now := domain.Now()
	job := &domain.Job{
		JobID:       jobID,
		Status:      domain.StatusQueued,
		TaskSpec:    taskSpec,
		AISummary:   m.summarize(ctx, taskSpec),
		BranchName:  branchName,
		BaseBranch:  baseBranch,
		BaseImage:   baseImage,
		CreatedAt:   now,
		UpdatedAt:   now,
		ProgressLog: []domain.ProgressEntry{},
	}
	if githubIssue != "" {
		job.GitHubIssue = &githubIssue
	}

	release := m.store.Lock(jobID)
	defer release()
	if err := m.store.Write(job); err != nil {
		return "", fmt.Errorf("persist new job: %w", err)
	}

	m.log.Info().Str("job_id", jobID).Str("branch", branchName).Msg("job created")
	return jobID, nil
}

// newJobID draws an 8-character UUID prefix, retrying on the (negligible
// but cheap to detect) chance of an on-disk collision.
func (m *Manager) newJobID() (string, error) {
	for range idRetries {
		id := uuid.NewString()[:idLength]
		if !m.store.Exists(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique job id after %d attempts", idRetries)
}

// summarize asks the external summarizer for a short title and falls back
// to the first words of the task when the response is unusable.
func (m *Manager) summarize(ctx context.Context, taskSpec string) string {
	sctx, cancel := context.WithTimeout(ctx, m.cfg.SummaryTimeout)
	defer cancel()

	if m.summarizer != nil {
		title, err := m.summarizer.Summarize(sctx, taskSpec)
		if err != nil {
			m.log.Info().Err(err).Msg("summary generation failed, using fallback")
		} else {
			title = strings.TrimSpace(title)
			if strings.HasPrefix(title, `"`) && strings.HasSuffix(title, `"`) && len(title) >= 2 {
				title = title[1 : len(title)-1]
			}
			if n := len(strings.Fields(title)); n >= 3 && n <= 7 {
				return title
			}
			m.log.Info().Str("summary", title).Msg("summary not a short phrase, using fallback")
		}
	}

	firstLine := taskSpec
	if trimmed := strings.TrimSpace(taskSpec); trimmed != "" {
		firstLine = strings.SplitN(trimmed, "\n", 2)[0]
	}
	words := strings.Fields(firstLine)
	if len(words) > 5 {
		words = words[:5]
	}
	if len(words) == 0 {
		return fallbackSummary
	}
	return strings.Join(words, " ")
}

// StatusUpdate carries the optional fields of UpdateStatus. Empty fields
// leave the persisted values untouched.
type StatusUpdate struct {
	ContainerID     string
	AgentImage      string
	ProgressMessage string
	ErrorMessage    string
	PRURL           string
}

// UpdateStatus applies a status transition plus any non-empty optional
// fields under the job lock. It reports false when the job is absent, its
// document is invalid, or the write fails.
func (m *Manager) UpdateStatus(jobID string, status domain.Status, upd StatusUpdate) bool {
	if !m.store.Exists(jobID) {
		return false
	}

	release := m.store.Lock(jobID)
	defer release()

	job, ok := m.store.Read(jobID)
	if !ok {
		return false
	}

	job.Status = status
	job.UpdatedAt = domain.Now()

	if upd.ContainerID != "" {
		cid := upd.ContainerID
		job.ContainerID = &cid
	}
	if upd.AgentImage != "" {
		img := upd.AgentImage
		job.AgentImage = &img
	}
	if upd.ProgressMessage != "" {
		job.ProgressLog = append(job.ProgressLog, domain.ProgressEntry{
			Timestamp: domain.Now(),
			Message:   upd.ProgressMessage,
		})
	}
	if upd.ErrorMessage != "" {
		msg := upd.ErrorMessage
		job.ErrorMessage = &msg
	}
	if upd.PRURL != "" {
		pr := upd.PRURL
		job.PRURL = &pr
	}

	if err := m.store.Write(job); err != nil {
		m.log.Error().Str("job_id", jobID).Err(err).Msg("failed to persist status update")
		return false
	}
	return true
}

// UpdateCostInfo merges cost and git statistics into the job document.
func (m *Manager) UpdateCostInfo(jobID string, cost domain.CostInfo, git domain.GitStats) bool {
	if !m.store.Exists(jobID) {
		return false
	}

	release := m.store.Lock(jobID)
	defer release()

	job, ok := m.store.Read(jobID)
	if !ok {
		return false
	}

	job.CostInfo = cost
	job.GitStats = git
	job.UpdatedAt = domain.Now()

	if err := m.store.Write(job); err != nil {
		m.log.Error().Str("job_id", jobID).Err(err).Msg("failed to persist cost info")
		return false
	}
	return true
}

// Get returns the job document, or false when absent or invalid.
func (m *Manager) Get(jobID string) (*domain.Job, bool) {
	if !m.store.Exists(jobID) {
		return nil, false
	}
	release := m.store.Lock(jobID)
	defer release()
	return m.store.Read(jobID)
}

// List reconciles persisted statuses against live container state, then
// returns all jobs (optionally filtered by status) newest-created first.
// An empty filter matches every status.
func (m *Manager) List(ctx context.Context, filter domain.Status) []*domain.Job {
	m.Sync(ctx)

	jobs := m.store.List()
	if filter != "" {
		filtered := jobs[:0]
		for _, job := range jobs {
			if job.Status == filter {
				filtered = append(filtered, job)
			}
		}
		jobs = filtered
	}

	// created_at is fixed-width RFC 3339 UTC, so string order is
	// chronological order.
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt > jobs[j].CreatedAt
	})
	return jobs
}

// Kill best-effort stops the job's container and records the cancelled
// state. A job without a container is still marked cancelled.
func (m *Manager) Kill(ctx context.Context, jobID string) bool {
	job, ok := m.Get(jobID)
	if !ok {
		return false
	}

	if job.ContainerID != nil && *job.ContainerID != "" {
		sctx, cancel := context.WithTimeout(ctx, m.cfg.StopTimeout)
		if err := m.runtime.Stop(sctx, *job.ContainerID); err != nil {
			m.log.Warn().Str("job_id", jobID).Err(err).Msg("container stop failed during kill")
		}
		cancel()
	}

	return m.UpdateStatus(jobID, domain.StatusCancelled, StatusUpdate{
		ProgressMessage: "job cancelled",
	})
}

// Cleanup tears down a job's container, derived image, and cost data, then
// removes the job document. Runtime failures are swallowed; only a failed
// document removal reports false.
func (m *Manager) Cleanup(ctx context.Context, jobID string) bool {
	job, ok := m.Get(jobID)
	if !ok {
		return false
	}

	if job.ContainerID != nil && *job.ContainerID != "" {
		cid := *job.ContainerID

		// A still-live container gets stopped before removal. Completed
		// jobs are included: their container may linger without --rm.
		switch job.Status {
		case domain.StatusRunning, domain.StatusQueued, domain.StatusCompleted:
			sctx, cancel := context.WithTimeout(ctx, m.cfg.StopTimeout)
			if err := m.runtime.Stop(sctx, cid); err != nil {
				m.log.Debug().Str("job_id", jobID).Err(err).Msg("cleanup: container stop failed")
			}
			cancel()
		}

		rctx, cancel := context.WithTimeout(ctx, m.cfg.RemoveTimeout)
		if err := m.runtime.Remove(rctx, cid); err != nil {
			m.log.Debug().Str("job_id", jobID).Err(err).Msg("cleanup: container remove failed")
		}
		cancel()
	}

	// Only images built for this run are removed; shared base images stay.
	if job.AgentImage != nil && strings.Contains(*job.AgentImage, "-agent-") {
		ictx, cancel := context.WithTimeout(ctx, m.cfg.RemoveImageTimeout)
		if err := m.runtime.RemoveImage(ictx, *job.AgentImage); err != nil {
			m.log.Debug().Str("job_id", jobID).Err(err).Msg("cleanup: image remove failed")
		}
		cancel()
	}

	if err := os.RemoveAll(filepath.Join(m.cfg.CostDataDir, jobID)); err != nil {
		m.log.Debug().Str("job_id", jobID).Err(err).Msg("cleanup: cost data remove failed")
	}

	release := m.store.Lock(jobID)
	defer release()
	if err := m.store.Remove(jobID); err != nil {
		m.log.Warn().Str("job_id", jobID).Err(err).Msg("cleanup: job document remove failed")
		return false
	}

	m.log.Info().Str("job_id", jobID).Msg("job cleaned up")
	return true
}

// CleanupTerminal cleans every completed, failed, or cancelled job and
// returns how many were removed. Teardown runs with bounded parallelism;
// per-job failures only affect that job's count.
func (m *Manager) CleanupTerminal(ctx context.Context) int {
	var cleaned atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cleanupParallelism)

	for _, job := range m.List(ctx, "") {
		if !job.Status.Terminal() {
			continue
		}
		jobID := job.JobID
		g.Go(func() error {
			if m.Cleanup(gctx, jobID) {
				cleaned.Add(1)
			}
			return nil
		})
	}

	_ = g.Wait()
	return int(cleaned.Load())
}

// ContainerLogs fetches the job's container output. Errors come back as
// the log body so that callers always have something to show.
func (m *Manager) ContainerLogs(ctx context.Context, jobID string) (string, bool) {
	job, ok := m.Get(jobID)
	if !ok || job.ContainerID == nil || *job.ContainerID == "" {
		return "", false
	}

	lctx, cancel := context.WithTimeout(ctx, m.cfg.LogsTimeout)
	defer cancel()

	logs, err := m.runtime.Logs(lctx, *job.ContainerID)
	if err != nil {
		return fmt.Sprintf("error getting logs: %v", err), true
	}
	return logs, true
}
