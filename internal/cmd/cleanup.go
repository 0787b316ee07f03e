package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanupCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup [job-id]",
		Short: "Remove a job and its resources, or all terminal jobs when no id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if !deps.Manager.Cleanup(cmd.Context(), args[0]) {
					return fmt.Errorf("job %s could not be cleaned up", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "job %s removed\n", args[0])
				return nil
			}

			count := deps.Manager.CleanupTerminal(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "cleaned up %d jobs\n", count)
			return nil
		},
	}
}
