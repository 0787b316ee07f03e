package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCreateCmd(deps Deps) *cobra.Command {
	var (
		baseImage  string
		branch     string
		baseBranch string
		issue      string
	)

	cmd := &cobra.Command{
		Use:   "create <task-spec>",
		Short: "Create a new queued agent job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID, err := deps.Manager.Create(cmd.Context(), args[0], baseImage, branch, baseBranch, issue)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), jobID)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseImage, "image", "python:3.11", "base container image for the agent run")
	cmd.Flags().StringVar(&branch, "branch", "", "working branch name")
	cmd.Flags().StringVar(&baseBranch, "base-branch", "main", "branch the work is based on")
	cmd.Flags().StringVar(&issue, "issue", "", "GitHub issue URL or number")
	_ = cmd.MarkFlagRequired("branch")

	return cmd
}
