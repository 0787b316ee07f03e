package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lberes/taskdock/internal/core/domain"
)

func newStatusCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Print the full job document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, ok := deps.Manager.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrJobNotFound, args[0])
			}
			b, err := json.MarshalIndent(job, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}
