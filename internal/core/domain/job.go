package domain

import (
	"errors"
	"time"
)

type Status string

// NOTE: These values are persisted in the per-job JSON documents and are
// part of the stable on-disk contract shared with companion tooling.
const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further automatic transition applies.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// ProgressEntry is one append-only progress_log record.
type ProgressEntry struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

type CostInfo struct {
	TotalCost       float64 `json:"total_cost"`
	InputTokens     int     `json:"input_tokens"`
	OutputTokens    int     `json:"output_tokens"`
	SessionDuration int     `json:"session_duration"`
}

type GitStats struct {
	LinesAdded        int `json:"lines_added"`
	LinesDeleted      int `json:"lines_deleted"`
	TotalLinesChanged int `json:"total_lines_changed"`
	FilesChanged      int `json:"files_changed"`
	CommitsMade       int `json:"commits_made"`
}

// Job is the persistent record for one unit of delegated agent work.
// Timestamps are RFC 3339 UTC strings, so created_at ordering is the
// lexicographic ordering of the persisted field.
type Job struct {
	JobID        string          `json:"job_id"`
	Status       Status          `json:"status"`
	TaskSpec     string          `json:"task_spec"`
	AISummary    string          `json:"ai_summary"`
	BranchName   string          `json:"branch_name"`
	BaseBranch   string          `json:"base_branch"`
	BaseImage    string          `json:"base_image"`
	GitHubIssue  *string         `json:"github_issue"`
	ContainerID  *string         `json:"container_id"`
	AgentImage   *string         `json:"agent_image,omitempty"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
	ProgressLog  []ProgressEntry `json:"progress_log"`
	PRURL        *string         `json:"pr_url"`
	ErrorMessage *string         `json:"error_message"`
	CostInfo     CostInfo        `json:"cost_info"`
	GitStats     GitStats        `json:"git_stats"`
}

// Timestamp renders t in the persisted timestamp format.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Now is the persisted timestamp for the current instant.
func Now() string {
	return Timestamp(time.Now())
}

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrContainerNotFound = errors.New("container not found")
)
