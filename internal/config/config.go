// Package config resolves runtime configuration from TASKDOCK_* environment
// variables with built-in defaults. The resolved Config is constructed once
// in main and injected; nothing reads ambient globals after startup.
package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv string

	// JobsDir holds one JSON document per job; CostDataDir holds the
	// per-job session cost files written by the agent execution.
	JobsDir     string
	CostDataDir string

	PollInterval time.Duration
	PrimeDelay   time.Duration

	InspectTimeout     time.Duration
	StopTimeout        time.Duration
	RemoveTimeout      time.Duration
	RemoveImageTimeout time.Duration
	LogsTimeout        time.Duration

	SummaryCommand   string
	SummaryPrintFlag string
	SummaryTimeout   time.Duration
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TASKDOCK")
	v.AutomaticEnv()

	v.SetDefault("app_env", "production")
	v.SetDefault("jobs_dir", ".ai_agent/jobs")
	v.SetDefault("cost_data_dir", ".ai_cost_data")
	v.SetDefault("poll_interval", 10*time.Second)
	v.SetDefault("prime_delay", 2*time.Second)
	v.SetDefault("inspect_timeout", 15*time.Second)
	v.SetDefault("stop_timeout", 10*time.Second)
	v.SetDefault("remove_timeout", 10*time.Second)
	v.SetDefault("remove_image_timeout", 30*time.Second)
	v.SetDefault("logs_timeout", 30*time.Second)
	v.SetDefault("summary_command", "claude")
	v.SetDefault("summary_print_flag", "-p")
	v.SetDefault("summary_timeout", 15*time.Second)

	return &Config{
		AppEnv:             v.GetString("app_env"),
		JobsDir:            v.GetString("jobs_dir"),
		CostDataDir:        v.GetString("cost_data_dir"),
		PollInterval:       v.GetDuration("poll_interval"),
		PrimeDelay:         v.GetDuration("prime_delay"),
		InspectTimeout:     v.GetDuration("inspect_timeout"),
		StopTimeout:        v.GetDuration("stop_timeout"),
		RemoveTimeout:      v.GetDuration("remove_timeout"),
		RemoveImageTimeout: v.GetDuration("remove_image_timeout"),
		LogsTimeout:        v.GetDuration("logs_timeout"),
		SummaryCommand:     v.GetString("summary_command"),
		SummaryPrintFlag:   v.GetString("summary_print_flag"),
		SummaryTimeout:     v.GetDuration("summary_timeout"),
	}, nil
}
