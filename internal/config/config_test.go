package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".ai_agent/jobs", cfg.JobsDir)
	assert.Equal(t, ".ai_cost_data", cfg.CostDataDir)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.PrimeDelay)
	assert.Equal(t, 15*time.Second, cfg.InspectTimeout)
	assert.Equal(t, 30*time.Second, cfg.RemoveImageTimeout)
	assert.Equal(t, "claude", cfg.SummaryCommand)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TASKDOCK_JOBS_DIR", "/tmp/jobs")
	t.Setenv("TASKDOCK_POLL_INTERVAL", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/jobs", cfg.JobsDir)
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
}
