package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lberes/taskdock/internal/adapters/ghnotify"
	"github.com/lberes/taskdock/internal/core/domain"
	"github.com/lberes/taskdock/internal/core/services"
)

// newWatchCmd attaches a foreground watcher to a launched container: the
// background monitor drives the job to a terminal state while an optional
// timeout watchdog posts a PR comment if the wall-clock budget elapses.
func newWatchCmd(deps Deps) *cobra.Command {
	var (
		timeLimit time.Duration
		prNumber  string
	)

	cmd := &cobra.Command{
		Use:   "watch <job-id> <container-id>",
		Short: "Monitor a running container until the job reaches a terminal state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID, containerID := args[0], args[1]

			if _, ok := deps.Manager.Get(jobID); !ok {
				return fmt.Errorf("%w: %s", domain.ErrJobNotFound, jobID)
			}

			if !deps.Manager.UpdateStatus(jobID, domain.StatusRunning, services.StatusUpdate{
				ContainerID:     containerID,
				ProgressMessage: "container attached, monitoring started",
			}) {
				return fmt.Errorf("could not attach container to job %s", jobID)
			}

			var watchdog *services.TimeoutMonitor
			if timeLimit > 0 {
				notifier := ghnotify.New(deps.Log, prNumber)
				watchdog = services.NewTimeoutMonitor(deps.Log, notifier, jobID, timeLimit)
				watchdog.Start()
				// The watcher that drives the job terminal also disarms
				// the watchdog, so a stale notification cannot fire.
				defer watchdog.Stop()
			}

			deps.Supervisor.Watch(cmd.Context(), jobID, containerID)
			deps.Supervisor.Wait()

			job, ok := deps.Manager.Get(jobID)
			if !ok {
				return fmt.Errorf("job %s disappeared while monitoring", jobID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %s finished with status %s\n", jobID, job.Status)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeLimit, "time-limit", 0, "wall-clock budget before a progress notification fires (0 disables)")
	cmd.Flags().StringVar(&prNumber, "pr", "", "PR number for timeout notifications")
	return cmd
}
