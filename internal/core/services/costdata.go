package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/lberes/taskdock/internal/core/domain"
)

// sessionCostFile is the document the agent execution writes into the
// job-scoped cost data directory.
const sessionCostFile = "session_cost.json"

type costDocument struct {
	Summary struct {
		TotalCost float64 `json:"total_cost"`
	} `json:"summary"`
	Cost struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"cost"`
	GitStats     domain.GitStats `json:"git_stats"`
	SessionStart string          `json:"session_start"`
	LastUpdate   string          `json:"last_update"`
}

// extractCostData reads the job's session cost file and merges its totals
// into the job document. A missing or malformed file is non-fatal:
// completion proceeds without cost data.
func (m *Manager) extractCostData(jobID string) {
	path := filepath.Join(m.cfg.CostDataDir, jobID, sessionCostFile)

	b, err := os.ReadFile(path)
	if err != nil {
		m.log.Info().Str("job_id", jobID).Msg("no cost data file found for job")
		return
	}

	var doc costDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		m.log.Warn().Str("job_id", jobID).Err(err).Msg("cost data file is malformed")
		return
	}

	cost := domain.CostInfo{
		TotalCost:       doc.Summary.TotalCost,
		InputTokens:     doc.Cost.InputTokens,
		OutputTokens:    doc.Cost.OutputTokens,
		SessionDuration: sessionDuration(doc.SessionStart, doc.LastUpdate),
	}

	if m.UpdateCostInfo(jobID, cost, doc.GitStats) {
		m.log.Info().Str("job_id", jobID).Float64("total_cost", cost.TotalCost).
			Msg("job cost data recorded")
	} else {
		m.log.Warn().Str("job_id", jobID).Msg("failed to record job cost data")
	}
}

// sessionDuration is the whole-second span between the recorded session
// start and last update, 0 on any parse failure.
func sessionDuration(start, end string) int {
	if start == "" || end == "" {
		return 0
	}
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return 0
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return 0
	}
	d := int(e.Sub(s).Seconds())
	if d < 0 {
		return 0
	}
	return d
}
