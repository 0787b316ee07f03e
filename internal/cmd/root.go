// Package cmd wires the CLI verbs onto the job manager. The commands are a
// thin dispatch layer; semantics live in internal/core/services.
package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lberes/taskdock/internal/config"
	"github.com/lberes/taskdock/internal/core/services"
)

// Deps carries the constructed collaborators into the command tree.
type Deps struct {
	Log        zerolog.Logger
	Cfg        *config.Config
	Manager    *services.Manager
	Supervisor *services.Supervisor
}

func NewRoot(deps Deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskdock",
		Short:         "Launch and track AI coding-agent jobs in Docker containers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newCreateCmd(deps),
		newListCmd(deps),
		newStatusCmd(deps),
		newLogsCmd(deps),
		newWatchCmd(deps),
		newKillCmd(deps),
		newCleanupCmd(deps),
	)
	return root
}
