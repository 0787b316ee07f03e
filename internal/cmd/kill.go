package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lberes/taskdock/internal/core/domain"
)

func newKillCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "kill <job-id>",
		Short: "Stop the job's container and mark the job cancelled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !deps.Manager.Kill(cmd.Context(), args[0]) {
				return fmt.Errorf("%w: %s", domain.ErrJobNotFound, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %s cancelled\n", args[0])
			return nil
		},
	}
}
