package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lberes/taskdock/internal/core/domain"
)

func newListCmd(deps Deps) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first, after syncing against container state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.Status(status)
			if status != "" && !filter.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}

			jobs := deps.Manager.List(cmd.Context(), filter)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "JOB ID\tSTATUS\tCREATED\tBRANCH\tSUMMARY")
			for _, job := range jobs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					job.JobID, job.Status, job.CreatedAt, job.BranchName, job.AISummary)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (queued|running|completed|failed|cancelled)")
	return cmd
}
