package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogsCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "logs <job-id>",
		Short: "Print the job's container logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logs, ok := deps.Manager.ContainerLogs(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("job %s not found or has no container", args[0])
			}
			fmt.Fprint(cmd.OutOrStdout(), logs)
			return nil
		},
	}
}
